package ports

// ScriptPort materializes executable entry-point wrappers on disk.
// Both methods return every path they created so the caller can record
// them in the installed-files ledger.
type ScriptPort interface {
	// MakeWrapper creates a wrapper that executes targetCommand.
	MakeWrapper(scriptName string, targetCommand []string) ([]string, error)

	// MakeEntryScript creates a wrapper that runs targetFile through
	// the module runtime, with referenceDir exported for resolution.
	MakeEntryScript(scriptName string, targetFile string, referenceDir string) ([]string, error)
}
