package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rpggio/clipstudio/internal/domain/activity"
	"github.com/rpggio/clipstudio/internal/domain/flip"
	"github.com/spf13/cobra"
)

func newProjectsCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Registered projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := env.app.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			return env.print(entries, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tPATH\tEXISTS")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%t\n", e.Name, e.Path, e.Exists)
				}
				tw.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <path>",
		Short: "Register an existing project directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := env.app.Projects.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return env.print(entry, func(w io.Writer) {
				fmt.Fprintf(w, "registered %q at %s\n", entry.Name, entry.Path)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Unregister a project; its files are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.app.Projects.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			return env.print(map[string]string{"removed": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "removed %q\n", args[0])
			})
		},
	})

	return cmd
}

func newClassCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "class",
		Short: "Add, rename or remove classes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <project> <class>",
		Short: "Add a class and create its directories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := env.app.Projects.LookupPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := env.app.Classes.AddClass(cmd.Context(), root, args[1]); err != nil {
				return err
			}
			return env.print(map[string]string{"added": args[1]}, func(w io.Writer) {
				fmt.Fprintf(w, "added class %q\n", args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <project> <old> <new>",
		Short: "Rename a class in the config and on disk",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := env.app.Projects.LookupPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := env.app.Classes.RenameClass(cmd.Context(), root, args[1], args[2]); err != nil {
				return err
			}
			return env.print(map[string]string{"from": args[1], "to": args[2]}, func(w io.Writer) {
				fmt.Fprintf(w, "renamed class %q to %q\n", args[1], args[2])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <project> <class>",
		Short: "Drop a class from the config; directories are kept",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := env.app.Projects.LookupPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := env.app.Classes.RemoveClass(cmd.Context(), root, args[1]); err != nil {
				return err
			}
			return env.print(map[string]string{"removed": args[1]}, func(w io.Writer) {
				fmt.Fprintf(w, "removed class %q\n", args[1])
			})
		},
	})

	return cmd
}

func newTagCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Assign temporal tags to classes",
	}

	run := func(assign bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("tag index %q: %w", args[2], err)
			}
			root, err := env.app.Projects.LookupPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var tags []int
			if assign {
				tags, err = env.app.Classes.AssignTag(cmd.Context(), root, args[1], index)
			} else {
				tags, err = env.app.Classes.UnassignTag(cmd.Context(), root, args[1], index)
			}
			if err != nil {
				return err
			}
			return env.print(map[string]any{"class": args[1], "tags": tags}, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %v\n", args[1], tags)
			})
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "assign <project> <class> <index>",
		Short: "Assign a tag index to a class",
		Args:  cobra.ExactArgs(3),
		RunE:  run(true),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unassign <project> <class> <index>",
		Short: "Remove a tag index from a class",
		Args:  cobra.ExactArgs(3),
		RunE:  run(false),
	})

	return cmd
}

func newFlipCmd(env *cliEnv) *cobra.Command {
	var copyTags []string

	cmd := &cobra.Command{
		Use:   "flip <project> <source class> <counterpart class>",
		Short: "Mirror the videos of a class into its counterpart",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			perSplit, err := parseCopyTags(copyTags)
			if err != nil {
				return err
			}
			root, err := env.app.Projects.LookupPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := env.app.Flip.Run(cmd.Context(), root, flip.Request{
				SourceClass:      args[1],
				CounterpartClass: args[2],
				CopyTags:         perSplit,
			})
			if err != nil {
				if res != nil && len(res.Rendered) > 0 {
					fmt.Fprintf(env.errOut, "rendered %d videos before failing\n", len(res.Rendered))
				}
				return err
			}
			return env.print(res, func(w io.Writer) {
				for _, v := range res.Rendered {
					fmt.Fprintln(w, "rendered", v)
				}
				for _, v := range res.TagsCopied {
					fmt.Fprintln(w, "copied", v)
				}
				fmt.Fprintf(w, "%d rendered, %d skipped\n", len(res.Rendered), len(res.Skipped))
			})
		},
	}
	cmd.Flags().StringSliceVar(&copyTags, "copy-tags", nil, "source videos whose annotations are copied, as <split>/<video>")

	return cmd
}

// parseCopyTags groups "<split>/<video>" values by split.
func parseCopyTags(values []string) (map[string][]string, error) {
	out := map[string][]string{}
	for _, v := range values {
		split, video, ok := strings.Cut(v, "/")
		if !ok || split == "" || video == "" {
			return nil, fmt.Errorf("copy-tags value %q: want <split>/<video>", v)
		}
		out[split] = append(out[split], video)
	}
	return out, nil
}

func newActivityCmd(env *cliEnv) *cobra.Command {
	var (
		projectName string
		className   string
		typ         string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the operation journal, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := activity.ListActivityOptions{Limit: limit}
			if projectName != "" {
				root, err := env.app.Projects.LookupPath(cmd.Context(), projectName)
				if err != nil {
					return err
				}
				opts.ProjectPath = root
			}
			if className != "" {
				opts.ClassName = &className
			}
			if typ != "" {
				t := activity.ActivityType(typ)
				opts.ActivityType = &t
			}

			entries, err := env.app.Activity.GetRecentActivity(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return env.print(entries, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TIME\tTYPE\tPROJECT\tSUMMARY")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						e.CreatedAt.Local().Format(time.DateTime), e.ActivityType, e.ProjectPath, e.Summary)
				}
				tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&projectName, "project", "", "only entries of this project")
	cmd.Flags().StringVar(&className, "class", "", "only entries of this class")
	cmd.Flags().StringVar(&typ, "type", "", "only entries of this type")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries")

	return cmd
}
