package main

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed relay.yaml.example
var configExampleContent string

// runInit generates relay.yaml.example in the current directory.
func runInit() error {
	const filename = "relay.yaml.example"

	// Always overwrite the example (it's a template, safe to update)
	if err := os.WriteFile(filename, []byte(configExampleContent), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}

	fmt.Printf("generated %s\n", filename)
	fmt.Println("Next steps:")
	fmt.Println("  1. cp relay.yaml.example relay.yaml")
	fmt.Println("  2. Set admin credentials: export ADMIN_USERNAME=... ADMIN_PASSWORD=...")
	fmt.Println("  3. Start the relay: ./mitm-relay")
	fmt.Println("  4. Configure the target: http://localhost:8000/___configure")

	return nil
}
