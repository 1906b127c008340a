package publisher

import (
	"testing"
)

// mockPublisher is a test implementation of Publisher
type mockPublisher struct {
	name string
}

func (m *mockPublisher) Publish(req PublishRequest) (PublishResult, error) {
	return PublishResult{
		Provider: m.name,
		Branch:   req.Branch,
		Success:  true,
	}, nil
}

func (m *mockPublisher) Name() string {
	return m.name
}

func (m *mockPublisher) Validate(req PublishRequest) error {
	return nil
}

func TestRegister(t *testing.T) {
	t.Run("registers a publisher successfully", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(&mockPublisher{name: "test1"})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if r.Get("test1") == nil {
			t.Error("publisher was not registered")
		}
	})

	t.Run("returns error when registering nil publisher", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(nil)

		if err == nil {
			t.Error("expected error for nil publisher, got nil")
		}
	})

	t.Run("returns error when publisher name is empty", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(&mockPublisher{name: ""})

		if err == nil {
			t.Error("expected error for empty name, got nil")
		}
	})

	t.Run("returns error when duplicate name is registered", func(t *testing.T) {
		r := NewRegistry()

		if err := r.Register(&mockPublisher{name: "test2"}); err != nil {
			t.Fatalf("failed to register first publisher: %v", err)
		}

		if err := r.Register(&mockPublisher{name: "test2"}); err == nil {
			t.Error("expected error for duplicate registration, got nil")
		}
	})
}

func TestGet(t *testing.T) {
	t.Run("returns registered publisher", func(t *testing.T) {
		r := NewRegistry()
		_ = r.Register(&mockPublisher{name: "test-get"})

		retrieved := r.Get("test-get")
		if retrieved == nil {
			t.Fatal("expected publisher, got nil")
		}

		if retrieved.Name() != "test-get" {
			t.Errorf("expected name 'test-get', got '%s'", retrieved.Name())
		}
	})

	t.Run("returns nil for non-existent publisher", func(t *testing.T) {
		r := NewRegistry()
		if r.Get("nonexistent") != nil {
			t.Error("expected nil for non-existent publisher")
		}
	})
}

func TestRegistryList(t *testing.T) {
	t.Run("returns empty list when no publishers registered", func(t *testing.T) {
		r := NewRegistry()
		if names := r.List(); len(names) != 0 {
			t.Errorf("expected empty list, got %v", names)
		}
	})

	t.Run("returns sorted list of registered publishers", func(t *testing.T) {
		r := NewRegistry()
		_ = r.Register(&mockPublisher{name: "charlie"})
		_ = r.Register(&mockPublisher{name: "alpha"})
		_ = r.Register(&mockPublisher{name: "bravo"})

		names := r.List()
		if len(names) != 3 {
			t.Fatalf("expected 3 publishers, got %d", len(names))
		}
		if names[0] != "alpha" || names[1] != "bravo" || names[2] != "charlie" {
			t.Errorf("expected sorted names, got %v", names)
		}
	})
}
