// Package backup holds the one-shot import/export runners behind the CLI.
package backup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"rmoflow/pkg/app"
)

// Export writes every application to a backup file.
type Export struct {
	Service *app.Service
	Path    string
}

func (n *Export) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not export, no service")
	}
	f, err := os.Create(n.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := n.Service.Export(f); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(color.Output, "Exported to %s\n", n.Path)
	return nil
}

// Import replaces every application with the contents of a backup file.
type Import struct {
	Service *app.Service
	Path    string
	// Force skips the interactive confirmation.
	Force bool
	// Confirm defaults to a y/n prompt on stdin.
	Confirm func(message string) bool
}

func (n *Import) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not import, no service")
	}
	confirm := n.Confirm
	if confirm == nil {
		confirm = stdinConfirm
	}
	if !n.Force && !confirm("Importing replaces every existing application. Continue?") {
		return errors.New("import cancelled")
	}

	f, err := os.Open(n.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	count, err := n.Service.Import(ctx, f)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(color.Output, "Imported %d applications\n", count)
	return nil
}

// BulkAdd appends applications from a backup file, applying the duplicate
// policy instead of wiping what is already there.
type BulkAdd struct {
	Service *app.Service
	Path    string
	Policy  app.DuplicatePolicy
}

func (n *BulkAdd) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not bulk add, no service")
	}
	f, err := os.Open(n.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := n.Service.BulkAdd(ctx, f, n.Policy)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(color.Output, "Added %d applications, skipped %d duplicates\n", res.Added, len(res.Skipped))
	for _, sk := range res.Skipped {
		_, _ = fmt.Fprintf(color.Output, "  skipped %s (%s)\n", sk.JobCode, sk.Hospital)
	}
	return nil
}

func stdinConfirm(message string) bool {
	fmt.Printf("%s [y/N]: ", message)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
