package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vex-labs/ticket-view/internal/api/dto"
	"github.com/vex-labs/ticket-view/internal/domain"
)

type userList struct {
	Data []dto.UserResponse `json:"data"`
}

func (l userList) header() []string {
	return []string{"ID", "NAME", "EMAIL", "CREATED"}
}

func (l userList) rows() [][]string {
	rows := make([][]string, 0, len(l.Data))
	for _, u := range l.Data {
		rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Name, u.Email, u.CreatedAt})
	}
	return rows
}

type statsResult struct {
	Data dto.StatsResponse `json:"data"`
}

func (s statsResult) header() []string {
	return []string{"METRIC", "VALUE"}
}

func (s statsResult) rows() [][]string {
	d := s.Data
	rows := [][]string{
		{"Total", strconv.Itoa(d.Total)},
		{"Open", strconv.Itoa(d.Open)},
	}
	for _, e := range d.ByStatus {
		rows = append(rows, []string{"Status " + e.Label, strconv.Itoa(e.Count)})
	}
	for _, e := range d.ByType {
		rows = append(rows, []string{"Type " + e.Label, strconv.Itoa(e.Count)})
	}
	for _, e := range d.ByPriority {
		rows = append(rows, []string{"Priority " + e.Label, strconv.Itoa(e.Count)})
	}
	avg := time.Duration(d.AvgResolutionSeconds * float64(time.Second)).Round(time.Second)
	rows = append(rows, []string{"Avg resolution", avg.String()})
	return rows
}

func newUsersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			users, err := svc.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			list := userList{Data: make([]dto.UserResponse, 0, len(users))}
			for _, u := range users {
				list.Data = append(list.Data, dto.NewUserResponse(u))
			}
			return render(a.out, format, list, list)
		}),
	}
}

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise tickets by status, type and priority",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			svc, err := a.viewService(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			result := statsResult{Data: dto.NewStatsResponse(stats)}
			if err := render(a.out, format, result, result); err != nil {
				return fmt.Errorf("rendering stats: %w", err)
			}
			if format == FormatTable {
				note(a.out, "\n%d tickets • %d open • %d resolved", stats.Total, stats.Open, stats.ByStatus[domain.StatusResolved])
			}
			return nil
		}),
	}
}
