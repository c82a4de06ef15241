package main

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/neomorfeo/keyledger/internal/adapter/file"
	handler "github.com/neomorfeo/keyledger/internal/adapter/http"
	"github.com/neomorfeo/keyledger/internal/app"
	"github.com/neomorfeo/keyledger/internal/config"
	"github.com/neomorfeo/keyledger/internal/domain"
	"github.com/neomorfeo/keyledger/internal/i18n"
)

func newGenerateCmd(c *cli) *cobra.Command {
	var kindName string
	var doCopy, doSave bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a key (uuid, api or license)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, err := domain.ParseKind(kindName)
			if err != nil {
				return err
			}
			svc, err := c.service(cmd.Context())
			if err != nil {
				return err
			}

			key, err := svc.Generate(cmd.Context(), kind)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, key.Value)

			if doCopy {
				if err := copyValue(c, cmd, svc, key.Value); err != nil {
					return err
				}
			}
			if doSave {
				return saveValue(c, cmd, svc, key.Value)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindName, "kind", "k", string(domain.DefaultKind), "key kind: uuid, api or license")
	cmd.Flags().BoolVar(&doCopy, "copy", false, "copy the key to the clipboard")
	cmd.Flags().BoolVar(&doSave, "save", false, "append the key to the backend")
	return cmd
}

func newCopyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <value>",
		Short: "Copy a value to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd.Context())
			if err != nil {
				return err
			}
			return copyValue(c, cmd, svc, args[0])
		},
	}
}

func newSaveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "save <value>",
		Short: "Append a key to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd.Context())
			if err != nil {
				return err
			}
			return saveValue(c, cmd, svc, args[0])
		},
	}
}

func newShowCmd(c *cli) *cobra.Command {
	var entries bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the backend content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service(cmd.Context())
			if err != nil {
				return err
			}

			view := svc.Refresh(cmd.Context())
			if !entries || view.State != domain.ContentPresent {
				fmt.Fprint(c.stdout, handler.DisplayText(view))
				if view.State != domain.ContentPresent {
					fmt.Fprintln(c.stdout)
				}
				return nil
			}

			w := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIMESTAMP\tVALUE")
			for _, e := range domain.ParseLog(view.Content) {
				fmt.Fprintf(w, "%s\t%s\n", e.Timestamp.Format(domain.TimestampLayout), e.Value)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&entries, "entries", false, "print parsed entries as a table")
	return cmd
}

func newExportCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the backend content to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service(cmd.Context())
			if err != nil {
				return err
			}

			content, err := svc.Export(cmd.Context())
			if err != nil {
				return &alertError{messageID: i18n.MsgExportAlert, err: err}
			}

			if output == "-" {
				return svc.Store().Export(c.stdout, content)
			}
			if err := file.WriteAtomic(output, []byte(content)); err != nil {
				return &alertError{messageID: i18n.MsgExportAlert, err: err}
			}
			fmt.Fprintln(c.stdout, i18n.T(i18n.MsgExportWritten, map[string]any{"Path": output}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", app.ExportFilename, `destination file ("-" for stdout)`)
	return cmd
}

func newClearCmd(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every key from the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes && !confirm(c, i18n.T(i18n.MsgClearConfirm)) {
				fmt.Fprintln(c.stdout, i18n.T(i18n.MsgClearAborted))
				return nil
			}

			svc, err := c.service(cmd.Context())
			if err != nil {
				return err
			}
			view, err := svc.Clear(cmd.Context())
			if err != nil {
				return &alertError{messageID: i18n.MsgClearAlert, err: err}
			}

			fmt.Fprintln(c.stdout, i18n.T(i18n.MsgAckCleared))
			fmt.Fprintln(c.stdout, handler.DisplayText(view))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "clear without asking")
	return cmd
}

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration",
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := output
			if path == "" {
				p, err := config.Path()
				if err != nil {
					return err
				}
				path = p
			}
			if err := config.Write(c.cfg, path); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, path)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default: user config dir)")

	cmd.AddCommand(initCmd)
	return cmd
}

func copyValue(c *cli, cmd *cobra.Command, svc *app.KeyService, value string) error {
	ack, err := svc.Copy(cmd.Context(), value)
	if err != nil {
		return &alertError{messageID: i18n.MsgCopyAlert, err: err}
	}
	fmt.Fprintln(c.stdout, i18n.T(ack.MessageID))
	return nil
}

func saveValue(c *cli, cmd *cobra.Command, svc *app.KeyService, value string) error {
	result, err := svc.Save(cmd.Context(), value)
	if err != nil {
		return &alertError{messageID: i18n.MsgSaveAlert, err: err}
	}
	fmt.Fprintln(c.stdout, i18n.T(result.Ack.MessageID))
	return nil
}

// confirm asks a yes/no question on stdin. Anything but y or yes declines.
func confirm(c *cli, question string) bool {
	fmt.Fprintf(c.stdout, "%s [y/N] ", question)
	answer, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(c.stdout)
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
