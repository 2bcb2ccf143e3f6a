package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vault-cli/passvault/internal/domain"
	"github.com/vault-cli/passvault/internal/vault"
)

var testParams = vault.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1}

func newTestKey(t *testing.T) *vault.Key {
	t.Helper()

	record, err := vault.Initialize("correct horse", "correct horse", testParams)
	require.NoError(t, err)
	key, err := vault.Verify("correct horse", record)
	require.NoError(t, err)
	t.Cleanup(key.Destroy)
	return key
}

func newTestRepo(t *testing.T) (*Repository, *vault.Key, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, CreateDocument(path))

	repo, err := Load(path, zerolog.Nop())
	require.NoError(t, err)
	return repo, newTestKey(t), path
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func plaintexts(t *testing.T, views []FieldView) [][]string {
	t.Helper()
	out := make([][]string, len(views))
	for i, v := range views {
		require.NoError(t, v.Err(), "field %d", i)
		for _, val := range v.Values {
			out[i] = append(out[i], val.Plaintext)
		}
	}
	return out
}

type recordingJournal struct {
	ops []*domain.Operation
}

func (j *recordingJournal) Record(op *domain.Operation) error {
	j.ops = append(j.ops, op)
	return nil
}

func TestCreateAndView(t *testing.T) {
	repo, key, path := newTestRepo(t)

	fields := []domain.Field{
		domain.Username{Value: "alice"},
		domain.Password{Value: "hunter2"},
		domain.SecurityQuestion{Question: "first pet?", Answer: "rex"},
		domain.Other{Label: "pin", Value: "0000"},
	}
	require.NoError(t, repo.Create(key, "github", fields))

	assert.Equal(t, []string{"github"}, repo.List())

	views, err := repo.View(key, "github")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"alice"}, {"hunter2"}, {"first pet?", "rex"}, {"pin", "0000"}}, plaintexts(t, views))

	for i, v := range views {
		f, err := v.Field()
		require.NoError(t, err)
		assert.Equal(t, fields[i], f)
	}

	// the change survives a reload
	reloaded, err := Load(path, zerolog.Nop())
	require.NoError(t, err)
	views, err = reloaded.View(key, "github")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", views[1].Values[0].Plaintext)

	// nothing on disk is plaintext
	assert.NotContains(t, string(readFile(t, path)), "hunter2")
}

func TestCreateEntryWithoutFields(t *testing.T) {
	repo, key, path := newTestRepo(t)

	require.NoError(t, repo.Create(key, "empty", nil))

	views, err := repo.View(key, "empty")
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.JSONEq(t, `{"entries":[{"name":"empty","fields":[]}]}`, string(readFile(t, path)))
}

func TestCreateRejectsDuplicateAndEmptyName(t *testing.T) {
	repo, key, path := newTestRepo(t)
	require.NoError(t, repo.Create(key, "github", []domain.Field{domain.Password{Value: "one"}}))
	before := readFile(t, path)

	err := repo.Create(key, "github", []domain.Field{domain.Password{Value: "two"}})
	assert.ErrorIs(t, err, ErrEntryExists)
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = repo.Create(key, "", nil)
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, before, readFile(t, path))
	assert.Equal(t, []string{"github"}, repo.List())
}

func TestNamesAreCaseSensitive(t *testing.T) {
	repo, key, _ := newTestRepo(t)
	require.NoError(t, repo.Create(key, "GitHub", nil))
	require.NoError(t, repo.Create(key, "github", nil))
	assert.Equal(t, []string{"GitHub", "github"}, repo.List())
}

func TestFind(t *testing.T) {
	repo, key, _ := newTestRepo(t)
	require.NoError(t, repo.Create(key, "mail", []domain.Field{domain.Username{Value: "bob"}}))

	e, err := repo.Find("mail")
	require.NoError(t, err)
	assert.Equal(t, "mail", e.Name)
	require.Len(t, e.Fields, 1)

	// the returned entry is a copy
	e.Fields[0].Values[0].Ciphertext = "00"
	again, err := repo.Find("mail")
	require.NoError(t, err)
	assert.NotEqual(t, "00", again.Fields[0].Values[0].Ciphertext)

	_, err = repo.Find("Mail")
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateFieldLeavesOtherFieldsUntouched(t *testing.T) {
	repo, key, path := newTestRepo(t)
	require.NoError(t, repo.Create(key, "bank", []domain.Field{
		domain.Username{Value: "carol"},
		domain.Password{Value: "old"},
		domain.Other{Label: "account", Value: "12345"},
	}))
	before, err := repo.Find("bank")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateField(key, "bank", 1, domain.Password{Value: "new"}))

	after, err := repo.Find("bank")
	require.NoError(t, err)
	assert.Equal(t, before.Fields[0], after.Fields[0])
	assert.Equal(t, before.Fields[2], after.Fields[2])
	assert.NotEqual(t, before.Fields[1].Values[0].Nonce, after.Fields[1].Values[0].Nonce)

	views, err := repo.View(key, "bank")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"carol"}, {"new"}, {"account", "12345"}}, plaintexts(t, views))

	// the rewritten file carries the untouched ciphertext and nonces verbatim
	reloaded, err := Load(path, zerolog.Nop())
	require.NoError(t, err)
	stored, err := reloaded.Find("bank")
	require.NoError(t, err)
	assert.Equal(t, before.Fields[0], stored.Fields[0])
	assert.Equal(t, before.Fields[2], stored.Fields[2])
	assert.Equal(t, after.Fields[1], stored.Fields[1])
}

func TestUpdateFieldCanChangeKind(t *testing.T) {
	repo, key, _ := newTestRepo(t)
	require.NoError(t, repo.Create(key, "site", []domain.Field{domain.Username{Value: "dave"}}))

	require.NoError(t, repo.UpdateField(key, "site", 0, domain.SecurityQuestion{Question: "q", Answer: "a"}))

	views, err := repo.View(key, "site")
	require.NoError(t, err)
	assert.Equal(t, domain.KindSecurityQuestion, views[0].Kind)
	assert.Equal(t, [][]string{{"q", "a"}}, plaintexts(t, views))
}

func TestUpdateFieldErrors(t *testing.T) {
	repo, key, path := newTestRepo(t)
	require.NoError(t, repo.Create(key, "site", []domain.Field{domain.Username{Value: "dave"}}))
	before := readFile(t, path)

	err := repo.UpdateField(key, "missing", 0, domain.Password{Value: "x"})
	assert.ErrorIs(t, err, ErrEntryNotFound)

	for _, idx := range []int{-1, 1, 7} {
		err = repo.UpdateField(key, "site", idx, domain.Password{Value: "x"})
		assert.ErrorIs(t, err, ErrFieldNotFound, "index %d", idx)
		assert.ErrorIs(t, err, ErrNotFound)
	}

	assert.Equal(t, before, readFile(t, path))
}

func TestAddAndRemoveField(t *testing.T) {
	repo, key, _ := newTestRepo(t)
	require.NoError(t, repo.Create(key, "site", []domain.Field{
		domain.Username{Value: "erin"},
		domain.Password{Value: "pw"},
	}))
	first, err := repo.Find("site")
	require.NoError(t, err)

	require.NoError(t, repo.AddField(key, "site", domain.Other{Label: "note", Value: "hi"}))
	require.NoError(t, repo.RemoveField("site", 1))

	after, err := repo.Find("site")
	require.NoError(t, err)
	require.Len(t, after.Fields, 2)
	assert.Equal(t, first.Fields[0], after.Fields[0])

	views, err := repo.View(key, "site")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"erin"}, {"note", "hi"}}, plaintexts(t, views))

	assert.ErrorIs(t, repo.RemoveField("site", 2), ErrFieldNotFound)
	assert.ErrorIs(t, repo.RemoveField("nope", 0), ErrEntryNotFound)
	assert.ErrorIs(t, repo.AddField(key, "nope", domain.Password{Value: "x"}), ErrEntryNotFound)
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	repo, key, path := newTestRepo(t)
	require.NoError(t, repo.Create(key, "keep", nil))
	before := readFile(t, path)
	info, err := os.Stat(path)
	require.NoError(t, err)

	n, err := repo.Delete("gone")
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, before, readFile(t, path))
	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), after.ModTime())
}

func TestDeleteRemovesEveryMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	doc := `{"entries":[
		{"name":"dup","fields":[]},
		{"name":"other","fields":[]},
		{"name":"dup","fields":[]}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	repo, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	n, err := repo.Delete("dup")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"other"}, repo.List())

	_, err = repo.Find("dup")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestRenameReencrypts(t *testing.T) {
	repo, key, _ := newTestRepo(t)
	require.NoError(t, repo.Create(key, "old", []domain.Field{
		domain.Username{Value: "frank"},
		domain.Other{Label: "k", Value: "v"},
	}))
	before, err := repo.Find("old")
	require.NoError(t, err)

	require.NoError(t, repo.Rename(key, "old", "new"))

	assert.Equal(t, []string{"new"}, repo.List())
	after, err := repo.Find("new")
	require.NoError(t, err)
	assert.NotEqual(t, before.Fields[0].Values[0], after.Fields[0].Values[0])

	views, err := repo.View(key, "new")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"frank"}, {"k", "v"}}, plaintexts(t, views))
}

func TestRenameErrors(t *testing.T) {
	repo, key, path := newTestRepo(t)
	require.NoError(t, repo.Create(key, "a", nil))
	require.NoError(t, repo.Create(key, "b", nil))
	before := readFile(t, path)

	assert.ErrorIs(t, repo.Rename(key, "a", "b"), ErrEntryExists)
	assert.ErrorIs(t, repo.Rename(key, "missing", "c"), ErrEntryNotFound)
	assert.ErrorIs(t, repo.Rename(key, "a", ""), ErrEmptyName)
	assert.NoError(t, repo.Rename(key, "a", "a"))

	assert.Equal(t, before, readFile(t, path))
}

func TestRenameAbortsOnUndecryptableValue(t *testing.T) {
	repo, key, path := newTestRepo(t)
	require.NoError(t, repo.Create(key, "broken", []domain.Field{domain.Password{Value: "pw"}}))

	// damage the nonce on disk and reload
	var doc domain.VaultDocument
	require.NoError(t, json.Unmarshal(readFile(t, path), &doc))
	doc.Entries[0].Fields[0].Values[0].Nonce = "abcd"
	require.NoError(t, WriteDocument(path, &doc))
	repo, err := Load(path, zerolog.Nop())
	require.NoError(t, err)
	before := readFile(t, path)

	err = repo.Rename(key, "broken", "fixed")
	assert.ErrorIs(t, err, vault.ErrMalformedValue)
	assert.Equal(t, []string{"broken"}, repo.List())
	assert.Equal(t, before, readFile(t, path))
}

func TestRenameWithoutReencryptionBreaksValues(t *testing.T) {
	repo, key, path := newTestRepo(t)
	require.NoError(t, repo.Create(key, "original", []domain.Field{domain.Password{Value: "secret value"}}))

	var doc domain.VaultDocument
	require.NoError(t, json.Unmarshal(readFile(t, path), &doc))
	doc.Entries[0].Name = "edited"
	require.NoError(t, WriteDocument(path, &doc))

	repo, err := Load(path, zerolog.Nop())
	require.NoError(t, err)
	views, err := repo.View(key, "edited")
	require.NoError(t, err)

	got := views[0].Values[0]
	if got.Err == nil {
		assert.NotEqual(t, "secret value", got.Plaintext)
	} else {
		assert.ErrorIs(t, got.Err, vault.ErrMalformedValue)
	}
}

func TestViewReportsPerValueErrors(t *testing.T) {
	repo, key, path := newTestRepo(t)
	require.NoError(t, repo.Create(key, "mixed", []domain.Field{
		domain.Username{Value: "grace"},
		domain.SecurityQuestion{Question: "q", Answer: "a"},
	}))

	var doc domain.VaultDocument
	require.NoError(t, json.Unmarshal(readFile(t, path), &doc))
	doc.Entries[0].Fields[1].Values[1].Ciphertext = "not hex"
	require.NoError(t, WriteDocument(path, &doc))

	repo, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	views, err := repo.View(key, "mixed")
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.NoError(t, views[0].Err())
	assert.Equal(t, "grace", views[0].Values[0].Plaintext)

	assert.NoError(t, views[1].Values[0].Err)
	assert.Equal(t, "q", views[1].Values[0].Plaintext)
	assert.ErrorIs(t, views[1].Values[1].Err, vault.ErrMalformedValue)

	_, err = views[1].Field()
	assert.ErrorIs(t, err, vault.ErrMalformedValue)

	_, err = repo.View(key, "absent")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestViewWithDifferentKeyDoesNotRecoverPlaintext(t *testing.T) {
	repo, key, _ := newTestRepo(t)
	require.NoError(t, repo.Create(key, "site", []domain.Field{domain.Password{Value: "plain text secret"}}))

	record, err := vault.Initialize("another password", "another password", testParams)
	require.NoError(t, err)
	other, err := vault.Verify("another password", record)
	require.NoError(t, err)
	defer other.Destroy()

	views, err := repo.View(other, "site")
	require.NoError(t, err)
	assert.NotEqual(t, "plain text secret", views[0].Values[0].Plaintext)
}

func TestFailedWriteKeepsState(t *testing.T) {
	repo, key, path := newTestRepo(t)
	require.NoError(t, repo.Create(key, "first", nil))

	// a directory at the target path makes the final rename fail
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o700))

	err := repo.Create(key, "second", nil)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, []string{"first"}, repo.List())

	n, err := repo.Delete("first")
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Equal(t, []string{"first"}, repo.List())
}

func TestDestroyedKeyIsRejected(t *testing.T) {
	repo, key, _ := newTestRepo(t)
	key.Destroy()

	err := repo.Create(key, "site", []domain.Field{domain.Password{Value: "x"}})
	assert.ErrorIs(t, err, vault.ErrKeyDestroyed)
	assert.Empty(t, repo.List())
}

func TestJournalSeesCommittedMutations(t *testing.T) {
	repo, key, _ := newTestRepo(t)
	j := &recordingJournal{}
	repo.SetJournal(j)

	require.NoError(t, repo.Create(key, "a", []domain.Field{domain.Password{Value: "x"}}))
	require.NoError(t, repo.UpdateField(key, "a", 0, domain.Password{Value: "y"}))
	require.NoError(t, repo.Rename(key, "a", "b"))
	_, err := repo.Delete("missing")
	require.NoError(t, err)
	_, err = repo.Delete("b")
	require.NoError(t, err)
	assert.Error(t, repo.Create(key, "", nil))

	var types []string
	for _, op := range j.ops {
		types = append(types, op.Type)
		assert.True(t, op.Success)
		assert.False(t, op.Timestamp.IsZero())
	}
	assert.Equal(t, []string{domain.OpCreate, domain.OpUpdate, domain.OpRename, domain.OpDelete}, types)
	assert.Equal(t, "a -> b", j.ops[2].Entry)
}
