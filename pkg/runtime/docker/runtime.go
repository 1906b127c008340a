// Package docker runs the publish tool inside a python container instead
// of on the host, for runs where no suitable interpreter is installed.
package docker

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
)

type Runtime struct {
	cli *client.Client
}

func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}
	return &Runtime{cli: cli}, nil
}

type ContainerConfig struct {
	PythonVersion string // e.g. 3.x, 3.12 (maps to a python image tag)
	Workspace     string
	Package       string // pip package that provides the tool
	Script        string // driver script, relative to the workspace
	Env           map[string]string
}

// RunTool runs the publish tool in a python container with the workspace
// bind-mounted. The container installs the package, runs the driver
// script, and exits. A non-zero exit is returned as an error.
func (r *Runtime) RunTool(ctx context.Context, cfg *ContainerConfig) error {
	if cfg.Package == "" {
		return fmt.Errorf("package name is required")
	}
	if cfg.Script == "" {
		return fmt.Errorf("driver script is required")
	}

	mountConfig := &MountConfig{WorkspaceDir: cfg.Workspace}
	if err := ValidateMountTargets(mountConfig); err != nil {
		return err
	}

	imageRef := PythonImage(cfg.PythonVersion)

	// Pull the image if not present locally
	_, _, err := r.cli.ImageInspectWithRaw(ctx, imageRef)
	if err != nil {
		fmt.Printf("Image %s not found locally, pulling...\n", imageRef)
		reader, err := r.cli.ImagePull(ctx, imageRef, image.PullOptions{})
		if err != nil {
			return fmt.Errorf("failed to pull image %s: %w", imageRef, err)
		}
		defer reader.Close()
		io.Copy(io.Discard, reader)
	} else {
		fmt.Printf("Image %s found locally.\n", imageRef)
	}

	env := BuildContainerEnv(&EnvConfig{
		ToolEnv: cfg.Env,
		HostUID: os.Getuid(),
		HostGID: os.Getgid(),
	})
	mounts := BuildContainerMounts(mountConfig)

	command := fmt.Sprintf("python -m pip install %s && python %s", cfg.Package, cfg.Script)

	fmt.Printf("Creating container from image %s...\n", imageRef)
	resp, err := r.cli.ContainerCreate(ctx, &container.Config{
		Image:      imageRef,
		Cmd:        []string{"sh", "-c", command},
		Env:        env,
		WorkingDir: WorkspaceTarget,
		Tty:        false,
	}, &container.HostConfig{
		Mounts:     mounts,
		AutoRemove: true,
	}, nil, nil, "")
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}

	fmt.Printf("Starting container %s...\n", resp.ID[:12])
	if err := r.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	out, err := r.cli.ContainerLogs(ctx, resp.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err == nil {
		defer out.Close()
		go io.Copy(os.Stdout, out)
	}

	fmt.Println("Waiting for container completion...")
	statusCh, errCh := r.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("container wait error: %w", err)
		}
	case status := <-statusCh:
		if status.StatusCode != 0 {
			return fmt.Errorf("tool run failed with exit code %d", status.StatusCode)
		}
	}

	return nil
}
