package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"climb-planner/backend/internal/model"
	"climb-planner/backend/internal/repository"
	pkgerrors "climb-planner/backend/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

var weekdayNames = [...]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Sheet "训练计划"：每周一行，周一 ~ 周日各一列，单元格内每条排期一行 "HH:MM 标题"
//   - Sheet "训练块"：计划用到的训练块（按首次出现顺序）
type ExportService interface {
	// ExportPlan 导出训练计划为 Excel
	ExportPlan(ctx context.Context, userID, planID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportPlan 导出训练计划为 Excel
// ═══════════════════════════════════════════════════════════
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportPlan(ctx context.Context, userID, planID string) (*bytes.Buffer, string, error) {
	// 1. 查询计划树（含周、排期与训练块）
	plan, err := s.repo.Plan.GetOwnedDetail(ctx, userID, planID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, "", ErrPlanNotFound
		}
		s.logger.Error("查询训练计划失败", zap.String("plan_id", planID), zap.Error(err))
		return nil, "", err
	}

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "训练计划"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, colName(1), colName(len(weekdayNames)), 24)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", plan.Title)
	f.MergeCell(sheetName, "A1", cell(colName(len(weekdayNames)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "周次")
	for i, name := range weekdayNames {
		f.SetCellValue(sheetName, cell(colName(i+1), row), name)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(weekdayNames)), row), headerStyle)

	// 数据行：每周一行
	blocks := make([]*model.TrainingBlock, 0)
	blockSeen := make(map[string]bool)
	row = 3
	for _, week := range plan.Weeks {
		f.SetCellValue(sheetName, cell("A", row), fmt.Sprintf("第%d周", week.WeekNumber))

		var lines [len(weekdayNames)][]string
		for _, a := range week.Assignments {
			if a.DayOfWeek < 1 || a.DayOfWeek > len(weekdayNames) {
				continue
			}
			title := "-"
			if a.Block != nil {
				title = a.Block.Title
				if !blockSeen[a.BlockID] {
					blockSeen[a.BlockID] = true
					blocks = append(blocks, a.Block)
				}
			}
			lines[a.DayOfWeek-1] = append(lines[a.DayOfWeek-1], a.TimeSlot+" "+title)
		}
		for i := range lines {
			text := "-"
			if len(lines[i]) > 0 {
				text = strings.Join(lines[i], "\n")
			}
			f.SetCellValue(sheetName, cell(colName(i+1), row), text)
		}
		f.SetCellStyle(sheetName, cell("B", row), cell(colName(len(weekdayNames)), row), wrapStyle)
		row++
	}

	// 3. 训练块清单
	blockSheet := "训练块"
	f.NewSheet(blockSheet)
	f.SetColWidth(blockSheet, "A", "A", 28)
	f.SetColWidth(blockSheet, "B", "B", 60)
	f.SetColWidth(blockSheet, "C", "C", 24)
	f.SetCellValue(blockSheet, "A1", "标题")
	f.SetCellValue(blockSheet, "B1", "说明")
	f.SetCellValue(blockSheet, "C1", "标签")
	f.SetCellStyle(blockSheet, "A1", "C1", headerStyle)
	for i, b := range blocks {
		r := i + 2
		f.SetCellValue(blockSheet, cell("A", r), b.Title)
		f.SetCellValue(blockSheet, cell("B", r), b.Description)
		f.SetCellValue(blockSheet, cell("C", r), b.Tags)
	}
	f.SetCellStyle(blockSheet, "B2", cell("B", len(blocks)+1), wrapStyle)

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("训练计划_%s.xlsx", sanitizeFilename(plan.Title))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// sanitizeFilename 去掉文件名中不安全的字符
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
}
