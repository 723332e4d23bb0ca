// cmd/tools/registry-updater/main.go
//
// Maintenance tool for the activity registry that catalogs the worker
// task types. Run it from the repository root.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"scholarship-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = runList(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "help":
		help()
	default:
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	fmt.Printf("Registry %s (%d activities, updated %s)\n\n", reg.Version, len(reg.Activities), reg.LastUpdated)
	for _, a := range reg.Activities {
		fmt.Printf("  %-22s %-12s %-10s retries=%d timeout=%s\n",
			a.TaskType, a.Category, a.ImplementationStatus, a.Retries, a.Timeout)
	}
	return nil
}

func runUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "Activity ID to update")
	field := fs.String("field", "", "Field to update (status, version, timeout, retries, description)")
	value := fs.String("value", "", "New value for the field")
	fs.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		fs.Usage()
		return fmt.Errorf("id, field and value are required")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	activity, err := reg.FindByTaskType(*id)
	if err != nil {
		return err
	}

	switch *field {
	case "status":
		activity.ImplementationStatus = *value
	case "version":
		activity.Version = *value
	case "description":
		activity.Description = *value
	case "timeout":
		activity.Timeout = *value
	case "retries":
		retries, err := strconv.Atoi(*value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", *field)
	}

	reg.LastUpdated = time.Now().Format("2006-01-02")
	if err := saveRegistry(reg, *path); err != nil {
		return err
	}

	fmt.Printf("Updated %s: %s = %s\n", *id, *field, *value)
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	if len(reg.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	seen := make(map[string]bool)
	for _, a := range reg.Activities {
		if a.ID == "" || a.TaskType == "" {
			return fmt.Errorf("activity missing id or taskType: %+v", a)
		}
		if seen[a.TaskType] {
			return fmt.Errorf("duplicate task type: %s", a.TaskType)
		}
		seen[a.TaskType] = true

		if a.DisplayName == "" {
			return fmt.Errorf("activity %s missing displayName", a.ID)
		}
		if a.Category == "" {
			return fmt.Errorf("activity %s missing category", a.ID)
		}

		// Compiling against an empty document surfaces broken schemas.
		if _, err := a.ValidateInput([]byte(`{}`)); err != nil {
			return fmt.Errorf("activity %s has an invalid input schema: %w", a.ID, err)
		}
	}

	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  list      List registered activities
  update    Update a field on an existing activity
  validate  Validate the registry file
  help      Show this help message

Examples:
  registry-updater list
  registry-updater update -id rank-scholarships -field status -value verified
  registry-updater validate -path configs/activity-registry.json`)
}
