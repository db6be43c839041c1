package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/roastlab/roastsim/internal/sim"
)

type ExportData struct {
	Meta    RunMetadata  `json:"meta"`
	Samples []sim.Sample `json:"samples"`
}

func ExportJSON(w io.Writer, meta RunMetadata, samples []sim.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Meta: meta, Samples: samples})
}

func ExportCSV(w io.Writer, samples []sim.Sample) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(sampleHeader); err != nil {
		return err
	}
	for _, sample := range samples {
		if err := cw.Write(sampleRow(sample)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
