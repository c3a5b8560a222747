package blob

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/nanotrie/subword/internal/errs"
	"github.com/nanotrie/subword/internal/trainer"
)

// WritePatternsSidecar writes patterns to path in spec.md §6/§4.8's text
// format: "count\tsurface\tprev_pos_str_or_empty\tshift\tchar_kind\tfeature_str",
// UTF-8, LF line endings, one record per line, sorted by descending count
// with lexicographic tie-break on surface. tr resolves each pattern's
// prev_pos_str and feature_str by id.
//
// The ordering pass uses github.com/emirpasic/gods/lists/arraylist (the
// same ranked-candidate-ordering idiom internal/trainer/prune.go uses for
// its own tie-break), rather than a hand-sorted slice, so the sidecar
// exercises the same dependency the pruning pass does.
func WritePatternsSidecar(path string, patterns []trainer.Pattern, tr *trainer.Trainer) error {
	list := arraylist.New()
	for _, p := range patterns {
		list.Add(p)
	}

	list.Sort(func(a, b interface{}) int {
		pa, pb := a.(trainer.Pattern), b.(trainer.Pattern)
		switch {
		case pa.Count != pb.Count:
			if pa.Count > pb.Count {
				return -1
			}
			return 1
		default:
			return strings.Compare(pa.Surface, pb.Surface)
		}
	})

	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: creating patterns sidecar")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 0; i < list.Size(); i++ {
		v, _ := list.Get(i)
		p := v.(trainer.Pattern)

		prevPosStr := ""
		if p.PrevPOS != trainer.NoPrevPOS {
			prevPosStr, _ = tr.POSString(p.PrevPOS)
		}
		featureStr, _ := tr.FeatureString(p.FeatureID)
		featureStr = strings.TrimRight(featureStr, "\r\n") + "\n"

		fields := []string{
			strconv.FormatInt(p.Count, 10),
			p.Surface,
			prevPosStr,
			strconv.FormatInt(int64(p.Shift), 10),
			p.CharKind.String(),
			featureStr,
		}
		if _, err := w.WriteString(strings.Join(fields, "\t")); err != nil {
			return errs.Wrap(errs.IoFailed, err, "blob: writing patterns sidecar line")
		}
	}

	if err := w.Flush(); err != nil {
		return errs.Wrap(errs.IoFailed, err, "blob: flushing patterns sidecar")
	}
	return nil
}

// SidecarRecord is one parsed line of a patterns sidecar, independent of
// the trainer's in-memory Pattern (no feature/POS table lookups are
// available once the trainer process has exited).
type SidecarRecord struct {
	Count      int64
	Surface    string
	PrevPOSStr string
	Shift      int32
	CharKind   string
	FeatureStr string
}

// ReadPatternsSidecar parses a patterns sidecar written by
// WritePatternsSidecar, for inference-time callers (bpetok.LoadTokenizer)
// that have only the sidecar and the blob, not a live Trainer.
func ReadPatternsSidecar(path string) ([]SidecarRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.IoFailed, err, "blob: opening patterns sidecar")
	}
	defer f.Close()

	var out []SidecarRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 6)
		if len(fields) != 6 {
			return nil, errs.Newf(errs.CorruptBlob, "blob: patterns sidecar line has %d fields, want 6", len(fields))
		}
		count, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, errs.Wrap(errs.CorruptBlob, err, "blob: parsing patterns sidecar count")
		}
		shift, err := strconv.ParseInt(fields[3], 10, 32)
		if err != nil {
			return nil, errs.Wrap(errs.CorruptBlob, err, "blob: parsing patterns sidecar shift")
		}
		out = append(out, SidecarRecord{
			Count:      count,
			Surface:    fields[1],
			PrevPOSStr: fields[2],
			Shift:      int32(shift),
			CharKind:   fields[4],
			FeatureStr: fields[5],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.IoFailed, err, "blob: scanning patterns sidecar")
	}
	return out, nil
}
