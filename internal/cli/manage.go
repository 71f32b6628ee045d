package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vex-labs/ticket-view/internal/api/dto"
	"github.com/vex-labs/ticket-view/internal/domain"
	"github.com/vex-labs/ticket-view/internal/service"
	"github.com/vex-labs/ticket-view/internal/viewmodel"
)

type userDetail struct {
	Data dto.UserResponse `json:"data"`
}

func (d userDetail) header() []string {
	return []string{"ID", "NAME", "EMAIL", "CREATED"}
}

func (d userDetail) rows() [][]string {
	u := d.Data
	return [][]string{{strconv.FormatInt(u.ID, 10), u.Name, u.Email, u.CreatedAt}}
}

func newCreateCommand(a *app) *cobra.Command {
	var (
		in       service.TicketInput
		author   string
		priority int64
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new ticket",
		Long:  `Asks the ticket service to open a ticket. The type is one of bug, feature, support, maintenance or other. Only the remote source accepts commands.`,
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			createdBy, err := parseUserID(author)
			if err != nil {
				return err
			}
			in.CreatedBy = createdBy
			in.Priority = priority
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			ticket, err := svc.CreateTicket(cmd.Context(), in)
			if err != nil {
				return err
			}
			if ticket == nil || !ticket.Valid() {
				return a.acknowledge(dto.CommandAccepted{Status: "accepted"})
			}
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			detail := ticketDetail{Data: dto.NewTicketDetail(*ticket)}
			return render(a.out, format, detail, detail)
		}),
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "ticket title (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "ticket description")
	cmd.Flags().StringVar(&in.Type, "type", viewmodel.DefaultTypeLabel, "ticket type")
	cmd.Flags().StringVar(&author, "user", "", "id of the reporting user (required)")
	cmd.Flags().Int64Var(&priority, "priority", 3, "priority from 1 (most urgent) to 5")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newUpdateCommand(a *app) *cobra.Command {
	var (
		title       string
		description string
		ticketType  string
		priority    int64
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the title, description, type or priority of a ticket",
		Long:  `Only the flags that are given are sent; the other fields keep their values.`,
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			var edit service.TicketEdit
			flags := cmd.Flags()
			if flags.Changed("title") {
				edit.Title = &title
			}
			if flags.Changed("description") {
				edit.Description = &description
			}
			if flags.Changed("type") {
				edit.Type = &ticketType
			}
			if flags.Changed("priority") {
				edit.Priority = &priority
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.UpdateTicket(cmd.Context(), id, edit); err != nil {
				return err
			}
			return a.accepted(id)
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&ticketType, "type", "", "new type")
	cmd.Flags().Int64Var(&priority, "priority", 0, "new priority from 1 to 5")
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.DeleteTicket(cmd.Context(), id); err != nil {
				return err
			}
			return a.accepted(id)
		}),
	}
}

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user <id>",
		Short: "Show one user, or manage users with a subcommand",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			user, err := svc.GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.showUser(user, id)
		}),
	}
	cmd.AddCommand(newUserCreateCommand(a), newUserUpdateCommand(a), newUserDeleteCommand(a))
	return cmd
}

func newUserCreateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> <email>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			user, err := svc.CreateUser(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.showUser(user, 0)
		}),
	}
}

func newUserUpdateCommand(a *app) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the name or email of a user",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			var edit service.UserEdit
			if cmd.Flags().Changed("name") {
				edit.Name = &name
			}
			if cmd.Flags().Changed("email") {
				edit.Email = &email
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			user, err := svc.UpdateUser(cmd.Context(), id, edit)
			if err != nil {
				return err
			}
			return a.showUser(user, id)
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	return cmd
}

func newUserDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			return a.acknowledge(dto.CommandAccepted{UserID: id, Status: "accepted"})
		}),
	}
}

// showUser renders user, or acknowledges the command for id when the backend
// echoed no user.
func (a *app) showUser(user *domain.UserView, id int64) error {
	if user == nil || user.ID <= 0 {
		return a.acknowledge(dto.CommandAccepted{UserID: id, Status: "accepted"})
	}
	format, err := a.outputFormat()
	if err != nil {
		return err
	}
	detail := userDetail{Data: dto.NewUserResponse(*user)}
	if err := render(a.out, format, detail, detail); err != nil {
		return fmt.Errorf("rendering user: %w", err)
	}
	return nil
}
