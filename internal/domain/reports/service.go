package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	cryptoutil "appraisal/internal/platform/crypto"
)

type Service struct {
	store  *Store
	crypto *cryptoutil.Service
}

func NewService(store *Store, crypto *cryptoutil.Service) *Service {
	return &Service{store: store, crypto: crypto}
}

func (s *Service) GridDistribution(ctx context.Context, year int) (Distribution, error) {
	recs, err := s.store.SignedEndYearReviews(ctx, year)
	if err != nil {
		return Distribution{}, err
	}
	return BuildDistribution(year, recs), nil
}

func (s *Service) Completion(ctx context.Context, year int) ([]CompletionRow, error) {
	return s.store.CompletionByStage(ctx, year)
}

// ReviewSummaryPDF renders a one-page summary of a review. With an
// encryption key configured the file is stored encrypted and the .enc path
// is returned.
func (s *Service) ReviewSummaryPDF(ctx context.Context, reviewID string) (string, error) {
	summary, err := s.store.ReviewSummary(ctx, reviewID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll("storage/reviews", 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join("storage/reviews", reviewID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Annual Review Summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", summary.EmployeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Job title: %s (TOV %s)", summary.JobTitle, summary.TOVLevel))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Year: %d, stage: %s, status: %s", summary.Year, summary.Stage, summary.Status))
	pdf.Ln(10)
	pdf.Cell(0, 8, "WHAT: "+scoreLine(summary.WhatValue, summary.WhatGrid))
	pdf.Ln(7)
	pdf.Cell(0, 8, "HOW: "+scoreLine(summary.HowValue, summary.HowGrid))
	pdf.Ln(10)
	if summary.EmployeeSignedAt != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Employee signed: %s", summary.EmployeeSignedAt.Format("2006-01-02 15:04")))
		pdf.Ln(7)
	}
	if summary.ManagerSignedAt != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Manager signed: %s", summary.ManagerSignedAt.Format("2006-01-02 15:04")))
		pdf.Ln(7)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if s.crypto != nil && s.crypto.Configured() {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		encrypted, err := s.crypto.Encrypt(data)
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		if err := os.Remove(filePath); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}

	return filePath, nil
}

// ReviewSummaryDocument renders the summary and returns plain PDF bytes,
// decrypting the at-rest copy when a key is configured.
func (s *Service) ReviewSummaryDocument(ctx context.Context, reviewID string) ([]byte, string, error) {
	path, err := s.ReviewSummaryPDF(ctx, reviewID)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	if strings.HasSuffix(path, ".enc") {
		data, err = s.crypto.Decrypt(data)
		if err != nil {
			return nil, "", err
		}
	}
	return data, reviewID + ".pdf", nil
}

func scoreLine(value *string, grid *int) string {
	if value == nil {
		return "not scored"
	}
	line := *value
	if grid != nil {
		line += fmt.Sprintf(" (grid %d)", *grid)
	}
	return line
}
