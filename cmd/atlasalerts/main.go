// atlasalerts converts a human-authored threshold table into MongoDB
// Atlas alert configurations and manages their lifecycle through the
// Atlas CLI. It only ever deletes alerts it created itself, unless
// explicitly confirmed otherwise.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
