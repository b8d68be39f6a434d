package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/mtlprog/folio/internal/domain"
)

// The CSV interchange format is sectioned: a fixed header line, an
// "Asset Class Targets" section and an "Assets" section. Export then import
// reproduces the asset list and target map field for field.

const (
	headerLine        = "Asset Allocation Export"
	targetsSection    = "Asset Class Targets"
	assetsSection     = "Assets"
	assetColumnCount  = 15
	targetColumnCount = 3
)

var targetColumns = []string{"Class", "Mode", "Percent"}

var assetColumns = []string{
	"ID", "Name", "Class", "SubType", "CurrentValue", "TargetMode",
	"TargetPercent", "TargetValue", "Ticker", "ISIN", "Shares",
	"PricePerShare", "OriginalCurrency", "Institution", "InstitutionCountry",
}

func assetRow(a domain.Asset) []string {
	return []string{
		a.ID,
		a.Name,
		string(a.AssetClass),
		string(a.SubAssetType),
		a.CurrentValue.String(),
		string(a.TargetMode),
		a.TargetPercent.String(),
		a.TargetValue.String(),
		a.Ticker,
		a.ISIN,
		a.Shares.String(),
		a.PricePerShare.String(),
		a.OriginalCurrency,
		a.Institution,
		a.InstitutionCountry,
	}
}

// WriteCSV writes the portfolio in the interchange format. Fields containing
// commas come out quoted, which encoding/csv handles.
func WriteCSV(w io.Writer, assets []domain.Asset, targets domain.ClassTargets) error {
	cw := csv.NewWriter(w)

	rows := [][]string{{headerLine}, {targetsSection}, targetColumns}
	for _, class := range domain.AllClasses {
		tgt, ok := targets[class]
		if !ok {
			continue
		}
		rows = append(rows, []string{string(class), string(tgt.TargetMode), tgt.TargetPercent.String()})
	}

	rows = append(rows, []string{assetsSection}, assetColumns)
	for _, a := range assets {
		rows = append(rows, assetRow(a))
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

func parseMode(s string) (domain.TargetMode, error) {
	switch domain.TargetMode(s) {
	case domain.ModePercentage, domain.ModeSet, domain.ModeOff:
		return domain.TargetMode(s), nil
	}
	return "", fmt.Errorf("unknown target mode %q", s)
}

func parseAssetRow(record []string, line int) (domain.Asset, error) {
	if len(record) != assetColumnCount {
		return domain.Asset{}, fmt.Errorf("line %d: asset row has %d fields, want %d", line, len(record), assetColumnCount)
	}
	mode, err := parseMode(record[5])
	if err != nil {
		return domain.Asset{}, fmt.Errorf("line %d: %w", line, err)
	}
	class := domain.AssetClass(record[2])
	if !class.Valid() {
		return domain.Asset{}, fmt.Errorf("line %d: unknown asset class %q", line, record[2])
	}
	if record[0] == "" {
		return domain.Asset{}, fmt.Errorf("line %d: asset row is missing an ID", line)
	}

	return domain.Asset{
		ID:                 record[0],
		Name:               record[1],
		AssetClass:         class,
		SubAssetType:       domain.SubAssetType(record[3]),
		CurrentValue:       domain.SafeParse(record[4]),
		TargetMode:         mode,
		TargetPercent:      domain.SafeParse(record[6]),
		TargetValue:        domain.SafeParse(record[7]),
		Ticker:             record[8],
		ISIN:               record[9],
		Shares:             domain.SafeParse(record[10]),
		PricePerShare:      domain.SafeParse(record[11]),
		OriginalCurrency:   record[12],
		Institution:        record[13],
		InstitutionCountry: record[14],
	}, nil
}

// ReadCSV parses the interchange format back into assets and class targets.
// Malformed input is a descriptive error; this is the boundary where shape
// validation happens, so the allocation engine never sees bad data.
func ReadCSV(r io.Reader) ([]domain.Asset, domain.ClassTargets, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) == 0 || len(records[0]) == 0 || records[0][0] != headerLine {
		return nil, nil, fmt.Errorf("not an allocation export: missing %q header", headerLine)
	}

	var assets []domain.Asset
	targets := domain.ClassTargets{}
	section := ""
	sawTargets, sawAssets := false, false

	for i, record := range records[1:] {
		line := i + 2
		if len(record) == 1 && (record[0] == targetsSection || record[0] == assetsSection) {
			section = record[0]
			if section == targetsSection {
				sawTargets = true
			} else {
				sawAssets = true
			}
			continue
		}

		switch section {
		case targetsSection:
			if len(record) > 0 && record[0] == targetColumns[0] {
				continue // column header
			}
			if len(record) != targetColumnCount {
				return nil, nil, fmt.Errorf("line %d: target row has %d fields, want %d", line, len(record), targetColumnCount)
			}
			class := domain.AssetClass(record[0])
			if !class.Valid() {
				return nil, nil, fmt.Errorf("line %d: unknown asset class %q", line, record[0])
			}
			mode, err := parseMode(record[1])
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			targets[class] = domain.AssetClassTarget{
				TargetMode:    mode,
				TargetPercent: domain.SafeParse(record[2]),
			}
		case assetsSection:
			if len(record) > 0 && record[0] == assetColumns[0] {
				continue
			}
			asset, err := parseAssetRow(record, line)
			if err != nil {
				return nil, nil, err
			}
			assets = append(assets, asset)
		default:
			return nil, nil, fmt.Errorf("line %d: content before any section", line)
		}
	}

	if !sawTargets || !sawAssets {
		return nil, nil, fmt.Errorf("incomplete export: need both %q and %q sections", targetsSection, assetsSection)
	}
	return assets, targets, nil
}
