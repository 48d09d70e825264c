package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFiles writes slash-separated relative paths under root, creating directories.
func WriteFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

// RemoveFile deletes a slash-separated relative path under root.
func RemoveFile(t testing.TB, root, rel string) {
	t.Helper()
	if err := os.Remove(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
		t.Fatalf("remove %s: %v", rel, err)
	}
}

// PhoenixProject is a small layered application used across tests.
// MyApp.Web reaches MyApp.Repo only through MyApp.Accounts.
func PhoenixProject() map[string]string {
	return map[string]string{
		"lib/my_app/web/user_controller.ex": `defmodule MyApp.Web.UserController do
  use MyApp.Web, :controller
  alias MyApp.Accounts

  def index(conn, _params), do: render(conn, users: Accounts.list_users())
end
`,
		"lib/my_app/web.ex": `defmodule MyApp.Web do
  def controller, do: nil
end
`,
		"lib/my_app/accounts.ex": `defmodule MyApp.Accounts do
  alias MyApp.{Repo, Accounts.User}

  def list_users, do: Repo.all(User)
end
`,
		"lib/my_app/accounts/user.ex": `defmodule MyApp.Accounts.User do
  use Ecto.Schema
end
`,
		"lib/my_app/repo.ex": `defmodule MyApp.Repo do
  use Ecto.Repo, otp_app: :my_app
end
`,
		"deps/ecto/lib/ecto/repo.ex": `defmodule Ecto.Repo do
end
`,
	}
}
