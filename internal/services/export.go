package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"remontbot/internal/repositories"
)

// ExportService выгружает каталог в xlsx: лист работ и лист
// материалов. Оформление намеренно минимальное.
type ExportService struct {
	catalogRepo repositories.CatalogRepositoryInterface
	logger      *zap.Logger
}

func NewExportService(catalogRepo repositories.CatalogRepositoryInterface, logger *zap.Logger) *ExportService {
	return &ExportService{catalogRepo: catalogRepo, logger: logger}
}

func (s *ExportService) ExportCatalog(ctx context.Context) ([]byte, error) {
	catalog, err := s.catalogRepo.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const worksSheet = "Работы"
	const materialsSheet = "Материалы"

	f.SetSheetName("Sheet1", worksSheet)
	if _, err := f.NewSheet(materialsSheet); err != nil {
		return nil, err
	}

	workHeaders := []interface{}{"Название", "Код", "Ед. изм.", "Цена за ед.", "Группа"}
	if err := f.SetSheetRow(worksSheet, "A1", &workHeaders); err != nil {
		return nil, err
	}
	for i, w := range catalog.Works {
		row := []interface{}{w.Name, w.Code, w.Unit, w.PricePerUnit, w.Group.String}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(worksSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	matHeaders := []interface{}{"Код работы", "Материал", "Ед. изм.", "Расход на ед.", "Цена за ед."}
	if err := f.SetSheetRow(materialsSheet, "A1", &matHeaders); err != nil {
		return nil, err
	}
	rowNum := 2
	for _, w := range catalog.Works {
		for _, m := range w.Materials {
			row := []interface{}{w.Code, m.Name, m.Unit, m.QtyPerUnit, m.PricePerUnit}
			cell := fmt.Sprintf("A%d", rowNum)
			if err := f.SetSheetRow(materialsSheet, cell, &row); err != nil {
				return nil, err
			}
			rowNum++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	s.logger.Info("Каталог выгружен в xlsx",
		zap.Int("works", len(catalog.Works)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}
