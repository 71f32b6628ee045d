package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vex-labs/ticket-view/internal/api/dto"
	"github.com/vex-labs/ticket-view/internal/domain"
	"github.com/vex-labs/ticket-view/internal/viewmodel"
)

type ticketList struct {
	Data []dto.TicketSummary `json:"data"`
	Meta dto.ListMeta        `json:"meta"`
}

func (l ticketList) header() []string {
	return []string{"ID", "STATUS", "PRIORITY", "TYPE", "TITLE", "ASSIGNEE", "CREATED"}
}

func (l ticketList) rows() [][]string {
	rows := make([][]string, 0, len(l.Data))
	for _, t := range l.Data {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			string(t.Status),
			fmt.Sprintf("%d (%s)", t.Priority, t.PriorityTier),
			t.Type,
			truncate(t.Title, 48),
			t.Assignee.Name,
			t.CreatedAt,
		})
	}
	return rows
}

type ticketDetail struct {
	Data dto.TicketDetailResponse `json:"data"`
}

func (d ticketDetail) header() []string {
	return []string{"FIELD", "VALUE"}
}

func (d ticketDetail) rows() [][]string {
	t := d.Data
	rows := [][]string{
		{"ID", strconv.FormatInt(t.ID, 10)},
		{"Title", t.Title},
		{"Status", string(t.Status)},
		{"Type", t.Type},
		{"Priority", fmt.Sprintf("%d (%s)", t.Priority, t.PriorityTier)},
		{"Created by", t.CreatedBy.Name},
		{"Assignee", t.Assignee.Name},
		{"Created", t.CreatedAt},
		{"Updated", t.UpdatedAt},
	}
	if t.ResolvedAt != "" {
		rows = append(rows, []string{"Resolved", t.ResolvedAt})
	}
	rows = append(rows, []string{"Description", strings.ReplaceAll(t.Description, "\n", " ")})
	for _, msg := range t.Messages {
		rows = append(rows, []string{"Message", fmt.Sprintf("[%s] %s: %s", msg.CreatedAt, msg.Author, truncate(msg.Content, 72))})
	}
	return rows
}

type commandResult struct {
	Data dto.CommandAccepted `json:"data"`
}

func (r commandResult) header() []string {
	return []string{"TARGET", "RESULT"}
}

func (r commandResult) rows() [][]string {
	target := "-"
	switch {
	case r.Data.TicketID > 0:
		target = "ticket " + strconv.FormatInt(r.Data.TicketID, 10)
	case r.Data.UserID > 0:
		target = "user " + strconv.FormatInt(r.Data.UserID, 10)
	}
	return [][]string{{target, r.Data.Status}}
}

func newTicketsCommand(a *app) *cobra.Command {
	var (
		tab      string
		search   string
		tier     string
		sortBy   string
		desc     bool
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List tickets",
		Long:  `Lists tickets filtered by status tab, search text and priority tier. Records that could not be rendered are counted on stderr.`,
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			state, err := listState(tab, search, tier, sortBy, desc, page, pageSize)
			if err != nil {
				return err
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			view, err := svc.ListTickets(cmd.Context(), state)
			if err != nil {
				return err
			}

			list := ticketList{
				Data: make([]dto.TicketSummary, 0, len(view.Tickets)),
				Meta: dto.ListMeta{
					Page:      view.Page.Number,
					PageSize:  view.Page.Size,
					Pages:     view.Page.Pages,
					Total:     view.Page.Total,
					Malformed: len(view.Malformed),
				},
			}
			for _, t := range view.Tickets {
				list.Data = append(list.Data, dto.NewTicketSummary(t))
			}
			for _, m := range view.Malformed {
				warn(a.errOut, "skipped malformed ticket: %s", m.Diagnostic)
			}
			if err := render(a.out, format, list, list); err != nil {
				return err
			}
			if format == FormatTable && list.Meta.Pages > 1 {
				note(a.out, "\npage %d of %d (%d tickets)", list.Meta.Page, list.Meta.Pages, list.Meta.Total)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&tab, "tab", viewmodel.TabAll, "status tab: all, open, on-going, on-hold, resolved or closed")
	cmd.Flags().StringVarP(&search, "query", "q", "", "case-insensitive search over id, title and description")
	cmd.Flags().StringVar(&tier, "tier", "", "priority tier: high or normal")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort key: id, created_at, updated_at or priority")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "tickets per page (0 uses the configured default)")
	return cmd
}

// listState validates flags the same way the HTTP query is validated.
func listState(tab, search, tier, sortBy string, desc bool, page, pageSize int) (domain.ViewState, error) {
	state := domain.ViewState{ActiveTab: viewmodel.TabAll, SearchQuery: search, SortDesc: desc, Page: page, PageSize: pageSize}
	if t := strings.TrimSpace(tab); t != "" && !strings.EqualFold(t, viewmodel.TabAll) {
		label, ok := viewmodel.ParseStatusLabel(t)
		if !ok {
			return state, fmt.Errorf("unknown tab %q", tab)
		}
		state.ActiveTab = string(label)
	}
	if strings.TrimSpace(tier) != "" {
		if state.PriorityTier = viewmodel.ParseTier(tier); state.PriorityTier == "" {
			return state, fmt.Errorf("unknown tier %q", tier)
		}
	}
	if strings.TrimSpace(sortBy) != "" {
		if state.SortBy = viewmodel.ParseSortKey(sortBy); state.SortBy == domain.SortNone {
			return state, fmt.Errorf("unknown sort key %q", sortBy)
		}
	}
	if page < 1 {
		return state, fmt.Errorf("page must be a positive integer")
	}
	if pageSize < 0 {
		return state, fmt.Errorf("page-size must not be negative")
	}
	return state, nil
}

func newTicketCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ticket <id>",
		Short: "Show one ticket with its messages",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			ticket, err := svc.GetTicket(cmd.Context(), id)
			if err != nil {
				return err
			}
			detail := ticketDetail{Data: dto.NewTicketDetail(*ticket)}
			return render(a.out, format, detail, detail)
		}),
	}
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Request a status change",
		Long:  `Asks the ticket service to move a ticket to open, on-going, on-hold, resolved or closed. Only the remote source accepts commands.`,
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.UpdateStatus(cmd.Context(), id, args[1]); err != nil {
				return err
			}
			return a.accepted(id)
		}),
	}
}

func newAssignCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <id> [user-id]",
		Short: "Assign a ticket, or clear the assignee when no user is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			var assignee *int64
			if len(args) == 2 {
				userID, err := parseUserID(args[1])
				if err != nil {
					return err
				}
				assignee = &userID
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Assign(cmd.Context(), id, assignee); err != nil {
				return err
			}
			return a.accepted(id)
		}),
	}
}

func newMessageCommand(a *app) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "message <id> <content>",
		Short: "Post a message to a ticket thread",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			author, err := parseUserID(userID)
			if err != nil {
				return err
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.AddMessage(cmd.Context(), id, author, args[1]); err != nil {
				return err
			}
			return a.accepted(id)
		}),
	}
	cmd.Flags().StringVar(&userID, "user", "", "id of the message author (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (a *app) accepted(id int64) error {
	return a.acknowledge(dto.CommandAccepted{TicketID: id, Status: "accepted"})
}

func (a *app) acknowledge(ack dto.CommandAccepted) error {
	format, err := a.outputFormat()
	if err != nil {
		return err
	}
	result := commandResult{Data: ack}
	return render(a.out, format, result, result)
}

func parseTicketID(raw string) (int64, error) {
	return positiveID("ticket id", raw)
}

func parseUserID(raw string) (int64, error) {
	return positiveID("user id", raw)
}

func positiveID(what, raw string) (int64, error) {
	id := viewmodel.IDOrZero(domain.WireIntFromString(raw))
	if id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", what, raw)
	}
	return id, nil
}
