// Command sdvpack is the CLI front-end over the installation packager
// core: build packages from files on disk, install/update/remove them,
// and inspect or verify existing ones. It is pure orchestration — every
// operation it exposes delegates straight to internal/composer,
// internal/extractor or internal/policy.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
