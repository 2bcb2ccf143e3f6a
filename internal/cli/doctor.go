package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vault-cli/passvault/internal/audit"
	"github.com/vault-cli/passvault/internal/store"
	"github.com/vault-cli/passvault/internal/vault"
)

// doctorReport tallies findings while the checks print them
type doctorReport struct {
	out      io.Writer
	issues   int
	warnings int
}

func (r *doctorReport) ok(format string, args ...interface{}) {
	_ = writeString(r.out, "   "+successColor.Sprintf("✓ "+format, args...)+"\n")
}

func (r *doctorReport) warn(format string, args ...interface{}) {
	r.warnings++
	_ = writeString(r.out, "   "+warnColor.Sprintf("! "+format, args...)+"\n")
}

func (r *doctorReport) fail(format string, args ...interface{}) {
	r.issues++
	_ = writeString(r.out, "   "+errColor.Sprintf("✗ "+format, args...)+"\n")
}

func (r *doctorReport) section(title string) {
	_ = writeString(r.out, "\n"+labelColor.Sprintf("%s", title)+"\n")
}

func newDoctorCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Perform security and health checks",
		Long: `Check the vault files without unlocking them.

This command checks:
- File permissions of the data directory and every vault file
- The master record hash format and Argon2 parameter strength
- The vault document structure (names, field types, value counts, nonces)
- The audit journal hash chain
- Clipboard timeout

Example:
  passvault doctor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.OutOrStdout(), e)
		},
	}
}

func runDoctor(out io.Writer, e *env) error {
	r := &doctorReport{out: out}
	_ = writeString(out, "Passvault Security & Health Check\n")
	_ = writeString(out, "=================================\n")

	r.section("1. File Security")
	checkDirPermissions(r, e.cfg.DataDir)
	for _, path := range []string{e.cfg.MasterPath(), e.cfg.VaultPath(), e.cfg.AuditPath()} {
		checkFilePermissions(r, path)
	}

	r.section("2. Master Record")
	checkMasterRecord(r, e.cfg.MasterPath())

	r.section("3. Vault Document")
	checkVaultDocument(r, e.cfg.VaultPath())

	r.section("4. Audit Journal")
	checkJournal(r, e)

	r.section("5. Settings")
	if e.cfg.ClipboardTTL == 0 {
		r.warn("Clipboard is never cleared (clipboard_ttl is 0)")
	} else if e.cfg.ClipboardTTL > 60*time.Second {
		r.warn("Clipboard timeout is %v (consider reducing for better security)", e.cfg.ClipboardTTL)
	} else {
		r.ok("Clipboard timeout: %v", e.cfg.ClipboardTTL)
	}
	if !e.cfg.ConfirmDestructive {
		r.warn("Deletes are not confirmed (confirm_destructive is false)")
	}

	_ = writeString(out, "\n"+strings.Repeat("=", 40)+"\n")
	if r.issues == 0 && r.warnings == 0 {
		return printSuccess(out, "All checks passed")
	}
	if r.warnings > 0 {
		_ = printWarning(out, "Found %d warning(s) for consideration", r.warnings)
	}
	if r.issues > 0 {
		return fmt.Errorf("found %d issue(s) that should be fixed", r.issues)
	}
	return nil
}

func checkDirPermissions(r *doctorReport, dir string) {
	info, err := os.Stat(dir)
	if err != nil {
		r.fail("Data directory %s: %v", dir, err)
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		r.warn("Data directory permissions: %o (consider 0700)", perm)
		return
	}
	r.ok("Data directory: %s", dir)
}

func checkFilePermissions(r *doctorReport, path string) {
	name := filepath.Base(path)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		r.warn("%s not found", name)
		return
	}
	if err != nil {
		r.fail("Cannot check %s: %v", name, err)
		return
	}

	perm := info.Mode().Perm()
	switch {
	case perm == 0o600:
		r.ok("%s permissions: %o", name, perm)
	case perm&0o077 != 0:
		r.fail("%s permissions: %o (too permissive, fix with: chmod 600 %s)", name, perm, path)
	default:
		r.warn("%s permissions: %o (0600 recommended)", name, perm)
	}
}

func checkMasterRecord(r *doctorReport, path string) {
	record, err := store.LoadMasterRecord(path)
	if err != nil {
		r.fail("Cannot read master record: %v", err)
		return
	}

	info, err := vault.DescribeRecord(record)
	if err != nil {
		r.fail("Password hash is not a valid hash string: %v", err)
		return
	}

	r.ok("Algorithm: %s v%d, %d byte digest", info.Algorithm, info.Version, info.HashLength)
	if info.Algorithm != "argon2id" {
		r.warn("Hash uses %s, argon2id is recommended", info.Algorithm)
	}
	if !info.SaltMatches {
		r.fail("hash_salt does not match the salt in password_hash")
	}
	if !info.KeySaltOK {
		r.fail("derived_key_salt is missing, malformed or reuses the hash salt")
	}

	p := info.Params
	switch {
	case p.Memory >= vault.DefaultArgon2Memory:
		r.ok("KDF memory parameter: %d KB", p.Memory)
	case p.Memory >= 8192:
		r.warn("KDF memory parameter: %d KB (acceptable but consider increasing)", p.Memory)
	default:
		r.fail("KDF memory parameter: %d KB (weak, should be at least 8192 KB)", p.Memory)
	}
	if p.Iterations >= vault.DefaultArgon2Iterations {
		r.ok("KDF iterations: %d", p.Iterations)
	} else {
		r.warn("KDF iterations: %d (consider increasing)", p.Iterations)
	}
	r.ok("KDF parallelism: %d", p.Parallelism)
}

func checkVaultDocument(r *doctorReport, path string) {
	doc, err := store.ReadDocument(path)
	if err != nil {
		r.fail("Cannot load vault document: %v", err)
		return
	}
	r.ok("Document parses, %d entr%s", len(doc.Entries), plural(len(doc.Entries), "y", "ies"))

	problems := store.Inspect(doc)
	for _, p := range problems {
		r.fail("%s", p)
	}
	if len(problems) == 0 {
		r.ok("All entries are well formed")
	}
}

func checkJournal(r *doctorReport, e *env) {
	path := e.cfg.AuditPath()
	if !store.Exists(path) {
		r.warn("No audit journal yet")
		return
	}

	j, err := audit.Open(path, e.log)
	if err != nil {
		r.fail("Cannot open audit journal: %v", err)
		return
	}
	defer j.Close()

	n, err := j.Verify()
	if err != nil {
		r.fail("%v", err)
		return
	}
	r.ok("Hash chain intact (%d records)", n)
}
