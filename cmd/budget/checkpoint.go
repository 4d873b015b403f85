package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/budget-buddy/internal/cli"
	"github.com/Veraticus/budget-buddy/internal/common"
	"github.com/Veraticus/budget-buddy/internal/storage"
	"github.com/spf13/cobra"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete database checkpoints.

Checkpoints save the current ledger and budget before risky changes so you
can go back to them. Imports take one automatically unless checkpoint.auto
is false.`,
		Example: `  budget checkpoint create --tag pre-2024-import
  budget checkpoint list
  budget checkpoint restore pre-2024-import
  budget checkpoint delete pre-2024-import`,
	}

	cmd.AddCommand(createCheckpointCmd(), listCheckpointsCmd(), restoreCheckpointCmd(), deleteCheckpointCmd())

	return cmd
}

// checkpointUserError adds guidance to the manager's sentinel errors.
func checkpointUserError(id string, err error) error {
	switch {
	case errors.Is(err, storage.ErrCheckpointNotFound):
		return common.NewUserError(fmt.Sprintf("No checkpoint named %s. Run `budget checkpoint list`", id), err)
	case errors.Is(err, storage.ErrCheckpointExists):
		return common.NewUserError(fmt.Sprintf("A checkpoint named %s already exists", id), err)
	case errors.Is(err, storage.ErrInvalidCheckpointID):
		return common.NewUserError(fmt.Sprintf("%q is not a valid checkpoint name", id), err)
	case errors.Is(err, storage.ErrCheckpointCorrupted):
		return common.NewUserError(fmt.Sprintf("Checkpoint %s failed its integrity check and was not restored", id), err)
	default:
		return err
	}
}

func createCheckpointCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				manager, err := checkpointManager(store)
				if err != nil {
					return err
				}

				info, err := manager.Create(ctx, tag, description)
				if err != nil {
					return checkpointUserError(tag, err)
				}

				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "%s Created checkpoint %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(info.ID),
					cli.FormatFileSize(info.FileSize))
				if info.Description != "" {
					_, _ = fmt.Fprintf(out, "  Description: %s\n", info.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "checkpoint name (auto-generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description of the checkpoint")

	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				manager, err := checkpointManager(store)
				if err != nil {
					return err
				}

				checkpoints, err := manager.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list checkpoints: %w", err)
				}
				return cli.RenderCheckpoints(cmd.OutOrStdout(), checkpoints, time.Now())
			})
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Restore the database from a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				manager, err := checkpointManager(store)
				if err != nil {
					return err
				}

				info, err := manager.Info(ctx, id)
				if err != nil {
					return checkpointUserError(id, err)
				}

				out := cmd.OutOrStdout()
				if !force {
					_, _ = fmt.Fprintf(out, "%s This will replace your current ledger with checkpoint %s.\n",
						cli.WarningStyle.Render(cli.WarningIcon),
						cli.InfoStyle.Render(id))
					_, _ = fmt.Fprintf(out, "  Created: %s, %d transactions\n",
						info.CreatedAt.Format("2006-01-02 15:04:05"), info.Transactions())
					if !cli.Confirm(cmd.InOrStdin(), out, "Continue?") {
						_, err := fmt.Fprintln(out, cli.SubtitleStyle.Render("Restore cancelled."))
						return err
					}
				}

				// Restore closes the store's handle; withStorage's Close is then a no-op.
				if err := manager.Restore(ctx, id); err != nil {
					return checkpointUserError(id, err)
				}

				_, err = fmt.Fprintf(out, "%s Restored from checkpoint %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(id))
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			return withStorage(ctx, func(store *storage.SQLiteStorage) error {
				manager, err := checkpointManager(store)
				if err != nil {
					return err
				}

				info, err := manager.Info(ctx, id)
				if err != nil {
					return checkpointUserError(id, err)
				}

				out := cmd.OutOrStdout()
				if !force {
					_, _ = fmt.Fprintf(out, "%s This will permanently delete checkpoint %s (%s).\n",
						cli.WarningStyle.Render(cli.WarningIcon),
						cli.InfoStyle.Render(id),
						cli.FormatFileSize(info.FileSize))
					if !cli.Confirm(cmd.InOrStdin(), out, "Continue?") {
						_, err := fmt.Fprintln(out, cli.SubtitleStyle.Render("Deletion cancelled."))
						return err
					}
				}

				if err := manager.Delete(ctx, id); err != nil {
					return checkpointUserError(id, err)
				}

				_, err = fmt.Fprintf(out, "%s Deleted checkpoint %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(id))
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}
