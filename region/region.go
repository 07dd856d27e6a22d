package region

// The process-wide descriptor regions. Plugin declarations populate these
// during start-up; the loader seals and scans them at module load.
var (
	// Metadata is the "name=value\0" record region.
	Metadata = NewMetaRegion()

	// Hooks is the lifecycle hook descriptor region.
	Hooks = NewHookRegion()

	// LoadEntries is the function-interception record region.
	LoadEntries = NewLoadEntryRegion()
)

// SealAll seals all three process-wide regions. The loader calls this before
// its first scan.
func SealAll() {
	Metadata.Seal()
	Hooks.Seal()
	LoadEntries.Seal()
}
