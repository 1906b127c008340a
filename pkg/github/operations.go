package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v68/github"
)

// FetchIssueInfo fetches basic issue information using the go-github SDK
func (c *Client) FetchIssueInfo(ctx context.Context, owner, repo string, issueNumber int) (*IssueInfo, error) {
	issue, _, err := c.GitHubClient().Issues.Get(ctx, owner, repo, issueNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue: %w", err)
	}

	return convertFromGitHubIssue(issue), nil
}

// convertFromGitHubIssue converts a github.Issue to our IssueInfo type
func convertFromGitHubIssue(issue *github.Issue) *IssueInfo {
	author := ""
	if user := issue.GetUser(); user != nil {
		author = user.GetLogin()
	}

	info := &IssueInfo{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		State:     issue.GetState(),
		URL:       issue.GetHTMLURL(),
		Author:    author,
		CreatedAt: issue.GetCreatedAt().Time,
		UpdatedAt: issue.GetUpdatedAt().Time,
	}

	// Repository may be nil in some API responses
	if issue.GetRepository() != nil {
		info.Repository = issue.GetRepository().GetFullName()
	}

	if issue.GetAssignee() != nil {
		info.Assignee = issue.GetAssignee().GetLogin()
	}

	labels := issue.Labels
	info.Labels = make([]string, len(labels))
	for i, label := range labels {
		info.Labels[i] = label.GetName()
	}

	return info
}

// FetchIssueComments fetches comments for an issue with pagination using the go-github SDK
func (c *Client) FetchIssueComments(ctx context.Context, owner, repo string, issueNumber int) ([]IssueComment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allComments []IssueComment
	for {
		comments, resp, err := c.GitHubClient().Issues.ListComments(ctx, owner, repo, issueNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch issue comments: %w", err)
		}

		for _, comment := range comments {
			allComments = append(allComments, convertFromGitHubIssueComment(comment))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// convertFromGitHubIssueComment converts a github.IssueComment to our IssueComment type
func convertFromGitHubIssueComment(comment *github.IssueComment) IssueComment {
	author := ""
	if user := comment.GetUser(); user != nil {
		author = user.GetLogin()
	}

	return IssueComment{
		CommentID: comment.GetID(),
		URL:       comment.GetHTMLURL(),
		Body:      comment.GetBody(),
		Author:    author,
		CreatedAt: comment.GetCreatedAt().Time,
		UpdatedAt: comment.GetUpdatedAt().Time,
	}
}

// CreateIssueComment posts a comment on an issue and returns its ID.
// The pipeline uses this to report the publish outcome back to the
// triggering issue when a token is available.
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, issueNumber int, body string) (int64, error) {
	comment := &github.IssueComment{Body: &body}
	created, _, err := c.GitHubClient().Issues.CreateComment(ctx, owner, repo, issueNumber, comment)
	if err != nil {
		return 0, fmt.Errorf("failed to create issue comment: %w", err)
	}
	return created.GetID(), nil
}

// FetchLatestRelease fetches the latest release from GitHub.
// Uses direct HTTP to avoid the go-github dependency for this simple operation.
func (c *Client) FetchLatestRelease(ctx context.Context, owner, repo string) (*ReleaseInfo, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)

	req, err := c.NewRequest(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var release ReleaseInfo
	if err := c.Do(req, &release); err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}

	return &release, nil
}
