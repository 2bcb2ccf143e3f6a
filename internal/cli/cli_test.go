package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/store"
	"github.com/vault-cli/passvault/internal/vault"
)

const testPassphrase = "correct horse battery staple"

// testHelper runs the root command against a throwaway data directory
type testHelper struct {
	t          *testing.T
	TempDir    string
	DataDir    string
	ConfigPath string
}

func newTestHelper(t *testing.T) *testHelper {
	t.Helper()

	tempDir := t.TempDir()
	h := &testHelper{
		t:          t,
		TempDir:    tempDir,
		DataDir:    filepath.Join(tempDir, "data"),
		ConfigPath: filepath.Join(tempDir, "config.yaml"),
	}

	cfg := fmt.Sprintf(`data_dir: %s
clipboard_ttl: 30s
confirm_destructive: true
log_level: warn
kdf:
  memory: 1024
  iterations: 1
  parallelism: 1
`, h.DataDir)
	require.NoError(t, os.WriteFile(h.ConfigPath, []byte(cfg), 0o600))

	return h
}

// run executes the command line with input on stdin and returns stdout
func (h *testHelper) run(input string, args ...string) (string, error) {
	h.t.Helper()

	cmd := NewRootCommand()
	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(append([]string{"--config", h.ConfigPath}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

// runUnlocked is run with the master password passed as a flag
func (h *testHelper) runUnlocked(input string, args ...string) (string, error) {
	h.t.Helper()
	return h.run(input, append([]string{"--passphrase", testPassphrase}, args...)...)
}

func (h *testHelper) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.runUnlocked("", args...)
	require.NoError(h.t, err, "passvault %s\n%s", strings.Join(args, " "), out)
	return out
}

func (h *testHelper) init() {
	h.t.Helper()
	h.mustRun("init")
}

func (h *testHelper) path(name string) string {
	return filepath.Join(h.DataDir, name)
}

func TestInitCreatesVaultFiles(t *testing.T) {
	h := newTestHelper(t)

	out := h.mustRun("init")
	assert.Contains(t, out, "Vault initialized")
	assert.Contains(t, out, "m=1024,t=1,p=1")

	record, err := store.LoadMasterRecord(h.path("settings.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(record.PasswordHash, "$argon2id$v=19$m=1024,t=1,p=1$"+record.HashSalt+"$"))

	data, err := os.ReadFile(h.path("db.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"entries":[]}`, string(data))

	_, err = h.runUnlocked("", "init")
	assert.ErrorContains(t, err, "already initialized")
}

func TestInitRejectsMismatchedConfirmation(t *testing.T) {
	h := newTestHelper(t)

	_, err := h.run("first\nsecond\n", "init")
	assert.ErrorIs(t, err, vault.ErrConfiguration)
	assert.NoFileExists(t, h.path("settings.json"))

	_, err = h.run("same\nsame\n", "init")
	require.NoError(t, err)
	assert.FileExists(t, h.path("settings.json"))
}

func TestCommandsRequireInit(t *testing.T) {
	h := newTestHelper(t)

	_, err := h.runUnlocked("", "list")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestWrongPasswordIsRejected(t *testing.T) {
	h := newTestHelper(t)
	h.init()

	_, err := h.run("", "--passphrase", "wrong", "list")
	assert.ErrorIs(t, err, vault.ErrInvalidPassword)

	// prompted password read from stdin
	out, err := h.run(testPassphrase+"\n", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No entries.")
}

func TestAddViewListFlow(t *testing.T) {
	h := newTestHelper(t)
	h.init()

	out := h.mustRun("add", "github",
		"--username", "octocat",
		"--password", "hunter2",
		"--question", "first pet=rex",
		"--other", "pin=1234")
	assert.Contains(t, out, "Entry 'github' added with 4 field(s)")

	h.mustRun("add", "gitlab", "--generate", "16")
	h.mustRun("add", "bank", "--username", "carol")

	out = h.mustRun("view", "github")
	assert.Contains(t, out, "1. Username: octocat")
	assert.Contains(t, out, "2. Password: hunter2")
	assert.Contains(t, out, "3. Security question: first pet / rex")
	assert.Contains(t, out, "4. Other: pin / 1234")

	out = h.mustRun("list")
	assert.Contains(t, out, "1. github")
	assert.Contains(t, out, "2. gitlab")
	assert.Contains(t, out, "3. bank")

	out = h.mustRun("list", "--search", "git")
	assert.Contains(t, out, "github")
	assert.Contains(t, out, "gitlab")
	assert.NotContains(t, out, "bank")

	raw, err := os.ReadFile(h.path("db.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")
	assert.NotContains(t, string(raw), "octocat")
}

func TestAddErrors(t *testing.T) {
	h := newTestHelper(t)
	h.init()
	h.mustRun("add", "site", "--password", "x")

	_, err := h.runUnlocked("", "add", "site", "--password", "y")
	assert.ErrorIs(t, err, store.ErrEntryExists)

	_, err = h.runUnlocked("", "add", "other", "--question", "no separator")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.runUnlocked("", "add", "other", "--password", "a", "--generate", "8")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddPromptsForFields(t *testing.T) {
	h := newTestHelper(t)
	h.init()

	// add a field? y, kind 1 (Username), value, add another? y, kind 2 (Password), value, add another? n
	input := "y\n1\nalice\ny\n2\ns3cret\nn\n"
	_, err := h.runUnlocked(input, "add", "prompted")
	require.NoError(t, err)

	out := h.mustRun("view", "prompted")
	assert.Contains(t, out, "Username: alice")
	assert.Contains(t, out, "Password: s3cret")
}

func TestUpdateReplaceAddRemove(t *testing.T) {
	h := newTestHelper(t)
	h.init()
	h.mustRun("add", "site", "--username", "dave", "--password", "old")

	out := h.mustRun("update", "site", "--field", "2", "--password", "new")
	assert.Contains(t, out, "Field 2 of 'site' updated")

	h.mustRun("update", "site", "--add", "--other", "note=hello")

	out = h.mustRun("view", "site")
	assert.Contains(t, out, "1. Username: dave")
	assert.Contains(t, out, "2. Password: new")
	assert.Contains(t, out, "3. Other: note / hello")
	assert.NotContains(t, out, "old")

	h.mustRun("update", "site", "--remove", "1")
	out = h.mustRun("view", "site")
	assert.Contains(t, out, "1. Password: new")
	assert.NotContains(t, out, "dave")
}

func TestUpdateErrors(t *testing.T) {
	h := newTestHelper(t)
	h.init()
	h.mustRun("add", "site", "--username", "dave")

	_, err := h.runUnlocked("", "update", "site", "--password", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.runUnlocked("", "update", "site", "--field", "1", "--add", "--password", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.runUnlocked("", "update", "site", "--field", "5", "--password", "x")
	assert.ErrorIs(t, err, store.ErrFieldNotFound)

	_, err = h.runUnlocked("", "update", "missing", "--field", "1", "--password", "x")
	assert.ErrorIs(t, err, store.ErrEntryNotFound)

	_, err = h.runUnlocked("", "update", "site", "--remove", "1", "--password", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRename(t *testing.T) {
	h := newTestHelper(t)
	h.init()
	h.mustRun("add", "old", "--password", "kept")

	h.mustRun("rename", "old", "new")

	out := h.mustRun("view", "new")
	assert.Contains(t, out, "Password: kept")

	_, err := h.runUnlocked("", "view", "old")
	assert.ErrorIs(t, err, store.ErrEntryNotFound)
}

func TestDelete(t *testing.T) {
	h := newTestHelper(t)
	h.init()
	h.mustRun("add", "a", "--password", "x")
	h.mustRun("add", "b", "--password", "y")

	// declined confirmation
	out, err := h.runUnlocked("n\n", "delete", "a")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	out, err = h.runUnlocked("y\n", "delete", "a")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 entry named 'a'")

	out = h.mustRun("delete", "b", "--yes")
	assert.Contains(t, out, "Deleted 1 entry")

	before, err := os.ReadFile(h.path("db.json"))
	require.NoError(t, err)
	out = h.mustRun("delete", "ghost", "--yes")
	assert.Contains(t, out, "No entry named 'ghost'")
	after, err := os.ReadFile(h.path("db.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestViewCopyToClipboard(t *testing.T) {
	h := newTestHelper(t)
	h.init()
	h.mustRun("add", "site", "--username", "erin", "--question", "city=Paris")

	s := &clipboardSpy{}
	stubClipboard(t, s, true)

	out := h.mustRun("view", "site", "--copy", "2", "--ttl", "5")
	assert.Contains(t, out, "Field 2 copied to clipboard")
	assert.NotContains(t, out, "Paris")
	assert.Equal(t, "Paris", s.secret)
	assert.Equal(t, 5*time.Second, s.ttl)

	_, err := h.runUnlocked("", "view", "site", "--copy", "3")
	assert.ErrorIs(t, err, store.ErrFieldNotFound)
}

func TestViewShowsUnreadableValues(t *testing.T) {
	h := newTestHelper(t)
	h.init()
	h.mustRun("add", "site", "--username", "frank", "--password", "pw")

	doc, err := store.ReadDocument(h.path("db.json"))
	require.NoError(t, err)
	doc.Entries[0].Fields[1].Values[0].Nonce = "00"
	require.NoError(t, store.WriteDocument(h.path("db.json"), doc))

	out := h.mustRun("view", "site")
	assert.Contains(t, out, "Username: frank")
	assert.Contains(t, out, "<unreadable:")
}

func TestMalformedDocumentIsReported(t *testing.T) {
	h := newTestHelper(t)
	h.init()
	require.NoError(t, os.WriteFile(h.path("db.json"), []byte("{broken"), 0o600))

	_, err := h.runUnlocked("", "list")
	assert.ErrorIs(t, err, store.ErrMalformed)
}

func TestAuditLog(t *testing.T) {
	h := newTestHelper(t)
	h.init()
	h.mustRun("add", "site", "--password", "x")
	h.mustRun("rename", "site", "renamed")
	h.mustRun("delete", "renamed", "--yes")

	out := h.mustRun("audit-log")
	for _, op := range []string{domain.OpInit, domain.OpCreate, domain.OpRename, domain.OpDelete} {
		assert.Contains(t, out, op)
	}
	assert.Contains(t, out, "site -> renamed")

	out = h.mustRun("audit-log", "--verify")
	assert.Contains(t, out, "Audit chain intact (4 records)")
}

func TestShellSession(t *testing.T) {
	h := newTestHelper(t)

	// first run creates the master record, then:
	// Create "mail" with one Password field, View it, List, Exit
	input := strings.Join([]string{
		"4", "mail", "y", "2", "pw-in-shell", "n",
		"3", "mail",
		"1",
		"8",
	}, "\n") + "\n"

	out, err := h.runUnlocked(input, "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Password verified")
	assert.Contains(t, out, "Entry 'mail' added with 1 field(s)")
	assert.Contains(t, out, "Password: pw-in-shell")
	assert.Contains(t, out, "1. mail")
	assert.FileExists(t, h.path("settings.json"))
}

func TestShellKeepsGoingAfterErrors(t *testing.T) {
	h := newTestHelper(t)
	h.init()

	// View a missing entry, pick a bad menu option, then run out of input
	out, err := h.runUnlocked("3\nghost\n99\n", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "entry not found")
	assert.Contains(t, out, "invalid choice")
}

func TestDoctor(t *testing.T) {
	h := newTestHelper(t)
	h.init()
	h.mustRun("add", "site", "--password", "x")

	// the fast test KDF settings are reported as weak
	out, err := h.run("", "doctor")
	assert.ErrorContains(t, err, "issue")
	assert.Contains(t, out, "KDF memory parameter: 1024 KB (weak")
	assert.Contains(t, out, "Document parses, 1 entry")
	assert.Contains(t, out, "All entries are well formed")
	assert.Contains(t, out, "Hash chain intact (2 records)")

	require.NoError(t, os.WriteFile(h.path("db.json"), []byte(`{"entries":[{"name":"x","fields":[{"type":"Note","data":["aa"],"nonce":["00"]}]}]}`), 0o600))
	out, _ = h.run("", "doctor")
	assert.Contains(t, out, `unknown type "Note"`)
	assert.Contains(t, out, "nonce is 1 bytes, want 12")
}

func TestConfigCommand(t *testing.T) {
	h := newTestHelper(t)

	out, err := h.run("", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, h.ConfigPath+"\n", out)

	_, err = h.run("", "config", "set", "clipboard_ttl", "10s")
	require.NoError(t, err)

	out, err = h.run("", "config", "get", "clipboard_ttl")
	require.NoError(t, err)
	assert.Equal(t, "10s\n", out)

	out, err = h.run("", "config", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "kdf.memory: 1024")

	_, err = h.run("", "config", "set", "kdf.memory", "1")
	assert.Error(t, err)
}
