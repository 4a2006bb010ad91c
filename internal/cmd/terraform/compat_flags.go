package terraform

import "github.com/alexander-akhmetov/stackwrap/internal/compat"

const (
	descBackup   = "Path to backup the existing state file"
	descState    = "Path to read and save state"
	descStateOut = "Path to write updated state"
	descNoColor  = "Disable color output"
	descJSON     = "Output in JSON format"
	descLockTime = "Duration to retry a state lock"
	descReplace  = "Force replacement of a particular resource instance"
)

// legacyFlags rewrites the single-dash spellings of stackwrap's own flags.
func legacyFlags(names ...string) []compat.Flag {
	out := []compat.Flag{
		compat.Rewrite("-s", "stack"),
		compat.Rewrite("-stack", "stack"),
		compat.Rewrite("-dry-run", "dry-run"),
	}
	for _, name := range names {
		out = append(out, compat.Rewrite("-"+name, name))
	}
	return out
}

// commonFlags are terraform flags shared by plan, apply and destroy.
func commonFlags() []compat.Flag {
	return []compat.Flag{
		compat.Divert("-var", "Set a value for one of the input variables"),
		compat.Divert("-var-file", "Load variable values from the given file"),
		compat.Divert("-target", "Target specific resources"),
		compat.DivertSwitch("-lock", "Lock the state file when locking is supported"),
		compat.Divert("-lock-timeout", descLockTime),
		compat.DivertSwitch("-input", "Ask for input for variables if not directly set"),
		compat.DivertSwitch("-no-color", descNoColor),
		compat.Divert("-parallelism", "Limit the number of concurrent operations"),
		compat.DivertSwitch("-refresh", "Update state prior to checking for differences"),
		compat.DivertSwitch("-compact-warnings", "Show warnings in a more compact form"),
	}
}

func planFlags() []compat.Flag {
	return concat(legacyFlags("skip-init"), commonFlags(), []compat.Flag{
		compat.DivertSwitch("-destroy", "Create a plan to destroy all remote objects"),
		compat.DivertSwitch("-refresh-only", "Create a plan to update state only"),
		compat.Divert("-replace", descReplace),
		compat.Divert("-out", "Write the plan to the given path"),
		compat.DivertSwitch("-detailed-exitcode", "Return detailed exit codes (0=success, 1=error, 2=changes)"),
		compat.Divert("-generate-config-out", "Write HCL for resources to import"),
		compat.DivertSwitch("-json", descJSON),
	})
}

func applyFlags() []compat.Flag {
	return concat(legacyFlags("skip-init", "from-plan", "planfile"), commonFlags(), []compat.Flag{
		compat.DivertSwitch("-auto-approve", "Skip interactive approval of plan before applying"),
		compat.Divert("-backup", descBackup),
		compat.DivertSwitch("-destroy", "Destroy all remote objects managed by the configuration"),
		compat.DivertSwitch("-refresh-only", "Update state only, no resource changes"),
		compat.Divert("-replace", descReplace),
		compat.DivertSwitch("-json", descJSON),
		compat.Divert("-state", descState),
		compat.Divert("-state-out", descStateOut),
	})
}

func destroyFlags() []compat.Flag {
	return concat(legacyFlags(), commonFlags(), []compat.Flag{
		compat.DivertSwitch("-auto-approve", "Skip interactive approval before destroying"),
		compat.Divert("-backup", descBackup),
		compat.DivertSwitch("-json", descJSON),
		compat.Divert("-state", descState),
		compat.Divert("-state-out", descStateOut),
	})
}

func initFlags() []compat.Flag {
	return concat(legacyFlags(), []compat.Flag{
		compat.DivertSwitch("-backend", "Configure the backend for this configuration"),
		compat.Divert("-backend-config", "Backend configuration to merge with the configuration file"),
		compat.DivertSwitch("-force-copy", "Suppress prompts about copying state data"),
		compat.Divert("-from-module", "Copy the contents of the given module into the target directory"),
		compat.DivertSwitch("-get", "Download any modules for this configuration"),
		compat.DivertSwitch("-input", "Ask for input if necessary"),
		compat.DivertSwitch("-lock", "Lock the state file"),
		compat.Divert("-lock-timeout", descLockTime),
		compat.DivertSwitch("-no-color", descNoColor),
		compat.Divert("-plugin-dir", "Directory containing plugin binaries"),
		compat.DivertSwitch("-reconfigure", "Reconfigure the backend, ignoring any saved configuration"),
		compat.DivertSwitch("-migrate-state", "Migrate state to the new backend"),
		compat.DivertSwitch("-upgrade", "Upgrade modules and plugins"),
		compat.Divert("-lockfile", "Set the dependency lockfile mode"),
		compat.DivertSwitch("-ignore-remote-version", "Ignore version constraints in remote state"),
	})
}

func validateFlags() []compat.Flag {
	return concat(legacyFlags(), []compat.Flag{
		compat.DivertSwitch("-json", "Output validation results in JSON format"),
		compat.DivertSwitch("-no-color", descNoColor),
		compat.DivertSwitch("-no-tests", "Skip test file validation"),
		compat.Divert("-test-directory", "Directory containing test files"),
	})
}

func outputFlags() []compat.Flag {
	return concat(legacyFlags(), []compat.Flag{
		compat.DivertSwitch("-json", descJSON),
		compat.DivertSwitch("-raw", "Output a raw string value without quotes"),
		compat.DivertSwitch("-no-color", descNoColor),
		compat.Divert("-state", "Path to the state file"),
	})
}

func showFlags() []compat.Flag {
	return concat(legacyFlags(), []compat.Flag{
		compat.DivertSwitch("-json", descJSON),
		compat.DivertSwitch("-no-color", descNoColor),
	})
}

func concat(lists ...[]compat.Flag) []compat.Flag {
	var out []compat.Flag
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
