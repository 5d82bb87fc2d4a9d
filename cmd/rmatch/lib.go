package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Comcast/regular/spec"
	"github.com/Comcast/regular/storage/bolt"
	"github.com/Comcast/regular/tools"
	"github.com/spf13/cobra"
)

var libCmd = &cobra.Command{
	Use:   "lib",
	Short: "Manage the spec library",
	Long: `The spec library is a database (--db) of spec sources by name.  The
serve command gets specs from the library.`,
}

var libPutCmd = &cobra.Command{
	Use:   "put NAME SPEC",
	Short: "Store a spec file",
	Long:  "Put checks that the spec compiles and then stores its source (after inlining).",
	Args:  cobra.ExactArgs(2),
	RunE:  runLibPut,
}

var libGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print a stored spec",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibGet,
}

var libListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List stored specs",
	Args:    cobra.NoArgs,
	RunE:    runLibList,
}

var libRemoveCmd = &cobra.Command{
	Use:     "rm NAME...",
	Aliases: []string{"remove"},
	Short:   "Remove stored specs",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runLibRemove,
}

func init() {
	libCmd.AddCommand(libPutCmd)
	libCmd.AddCommand(libGetCmd)
	libCmd.AddCommand(libListCmd)
	libCmd.AddCommand(libRemoveCmd)
}

// withLibrary opens the library, calls f, and closes the library.
func withLibrary(ctx context.Context, f func(*bolt.Storage) error) error {
	s := bolt.NewStorage(dbFilename)
	s.Debug = verbose
	if err := s.Open(ctx); err != nil {
		return fmt.Errorf("opening %s: %w", dbFilename, err)
	}
	err := f(s)
	if cerr := s.Close(ctx); err == nil {
		err = cerr
	}
	return err
}

func runLibPut(cmd *cobra.Command, args []string) error {
	ctx := contextOf(cmd)
	name, filename := args[0], args[1]

	src, err := tools.ReadFileWithInlines(filename)
	if err != nil {
		return err
	}
	s, err := spec.Parse(src)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	if err = s.Compile(ctx, nil); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	logf("storing %s from %s", name, filepath.Base(filename))

	return withLibrary(ctx, func(lib *bolt.Storage) error {
		return lib.Put(ctx, name, src)
	})
}

func runLibGet(cmd *cobra.Command, args []string) error {
	ctx := contextOf(cmd)
	return withLibrary(ctx, func(lib *bolt.Storage) error {
		src, err := lib.Get(ctx, args[0])
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(src)
		return err
	})
}

func runLibList(cmd *cobra.Command, args []string) error {
	ctx := contextOf(cmd)
	return withLibrary(ctx, func(lib *bolt.Storage) error {
		names, err := lib.List(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	})
}

func runLibRemove(cmd *cobra.Command, args []string) error {
	ctx := contextOf(cmd)
	return withLibrary(ctx, func(lib *bolt.Storage) error {
		for _, name := range args {
			if err := lib.Delete(ctx, name); err != nil {
				return err
			}
		}
		return nil
	})
}
