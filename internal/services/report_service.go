package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ticket-desk/internal/entities"
	"ticket-desk/internal/repositories"
)

const reportSheet = "Tickets"

var reportHeaders = []string{
	"ID", "Created at", "Owner", "Owner ID", "Title", "Description", "Category",
	"Priority", "Status", "Rating", "First response (s)", "Extracted entities",
}

type ReportServiceInterface interface {
	ExportTickets(ctx context.Context) (*excelize.File, error)
}

type ReportService struct {
	ticketRepo repositories.TicketRepositoryInterface
	logger     *zap.Logger
}

func NewReportService(ticketRepo repositories.TicketRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &ReportService{ticketRepo: ticketRepo, logger: logger}
}

// ExportTickets builds a workbook with every ticket and its owner's name.
// The caller must close the returned file.
func (s *ReportService) ExportTickets(ctx context.Context) (*excelize.File, error) {
	tickets, err := s.ticketRepo.GetTickets(ctx, repositories.TicketFilter{NoLimit: true})
	if err != nil {
		s.logger.Error("ExportTickets: could not list tickets", zap.Error(err))
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not name sheet: %w", err)
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeaders); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(reportSheet, "A1", "L1", style)
	}

	for i := range tickets {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := ticketRow(&tickets[i])
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("could not write row %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(reportSheet, "C", "C", 25)
	_ = f.SetColWidth(reportSheet, "E", "E", 40)
	_ = f.SetColWidth(reportSheet, "F", "F", 60)
	_ = f.SetColWidth(reportSheet, "G", "G", 22)

	s.logger.Info("tickets exported", zap.Int("count", len(tickets)))
	return f, nil
}

func ticketRow(t *entities.Ticket) []interface{} {
	var rating, firstResponse interface{}
	if t.Rating != nil {
		rating = *t.Rating
	}
	if t.FirstResponseSeconds != nil {
		firstResponse = *t.FirstResponseSeconds
	}

	keys := make([]string, 0, len(t.ExtractedEntities))
	for k := range t.ExtractedEntities {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+t.ExtractedEntities[k])
	}

	return []interface{}{
		t.ID, t.CreatedAt.Format("2006-01-02 15:04:05"), t.OwnerName, t.OwnerID,
		t.Title, t.Description, t.Category, t.Priority, t.Status,
		rating, firstResponse, strings.Join(pairs, "; "),
	}
}
