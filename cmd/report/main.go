// report печатает мероприятия и сводку из сохранённого состояния.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Freeeeeet/campus_events/internal/app"
	"github.com/Freeeeeet/campus_events/internal/config"
	"github.com/Freeeeeet/campus_events/internal/lifecycle"
	"github.com/Freeeeeet/campus_events/internal/model"
	"github.com/Freeeeeet/campus_events/internal/service"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
)

func main() {
	status := flag.String("status", "", "Show only events in this status (Pending, Active, Cancelled, Rejected)")
	csvPath := flag.String("csv", "", "Also export all events to this CSV file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, "campus_events_report")
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger, model.EventStatus(*status), *csvPath); err != nil {
		logger.Fatal("❌ Report failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, status model.EventStatus, csvPath string) error {
	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	dir, err := app.LoadDirectory(ctx, store, logger)
	if err != nil {
		return err
	}

	events := service.NewEventService(dir, lifecycle.NewManager(dir, nil), service.NewPersistence(dir, store), logger)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "Status", "Start", "Room", "Organizer", "Seats"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, e := range events.List(ctx, service.EventFilter{Status: status}) {
		room := e.RoomID
		if r, err := dir.Room(e.RoomID); err == nil {
			room = r.Name
		}
		organizer := events.OrganizerName(e)
		if organizer == "" {
			organizer = "-"
		}

		// Первые 8 символов ID достаточно для чтения глазами
		displayID := e.ID
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}

		table.Append([]string{
			displayID,
			e.Title,
			string(e.Status),
			e.StartTime.Format("2006-01-02 15:04"),
			room,
			organizer,
			fmt.Sprintf("%d/%d", len(e.Registrations), e.Capacity),
		})
	}
	table.Render()

	summary := events.Summary(ctx)
	totals := tablewriter.NewWriter(os.Stdout)
	totals.SetHeader([]string{"Metric", "Count"})
	totals.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, s := range []model.EventStatus{
		model.EventStatusPending,
		model.EventStatusActive,
		model.EventStatusCancelled,
		model.EventStatusRejected,
	} {
		totals.Append([]string{"Events " + string(s), strconv.Itoa(summary.ByStatus[s])})
	}
	totals.Append([]string{"Students", strconv.Itoa(summary.Students)})
	totals.Append([]string{"Organizers", strconv.Itoa(summary.Organizers)})
	totals.Append([]string{"Admins", strconv.Itoa(summary.Admins)})
	totals.Append([]string{"Rooms", strconv.Itoa(summary.Rooms)})
	totals.Render()

	if csvPath == "" {
		return nil
	}

	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := events.ExportCSV(ctx, f); err != nil {
		return err
	}
	logger.Info("✅ CSV exported", zap.String("path", csvPath))
	return nil
}
