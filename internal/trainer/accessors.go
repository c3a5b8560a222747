package trainer

import "github.com/nanotrie/subword/internal/charclass"

// FeatureString returns the full feature string registered under id.
func (t *Trainer) FeatureString(id int32) (string, bool) {
	return t.featureTable.GetByID(id)
}

// POSString returns the POS tuple string registered under id.
func (t *Trainer) POSString(id int32) (string, bool) {
	return t.posTable.GetByID(id)
}

// NumSeedPatterns returns the pattern-id boundary below which every
// pattern originated from bootstrapping or AddSeedRecord.
func (t *Trainer) NumSeedPatterns() int32 {
	return t.numSeedPatterns
}

// Counter exposes the shared counter table, read-only, for callers that
// need to export dense char/POS ids (internal/blob's char_to_id region).
func (t *Trainer) Counter() *CounterTable {
	return t.counter
}

// PosStrings returns every registered POS string in id order.
func (t *Trainer) PosStrings() []string {
	return append([]string(nil), t.posTable.Keys()...)
}

// FeatureStrings returns every registered feature string in id order.
func (t *Trainer) FeatureStrings() []string {
	return append([]string(nil), t.featureTable.Keys()...)
}

// CharTable exposes the trainer's character-class table for callers that
// need to classify a surface independent of mining. Pruned patterns already
// carry their class in Pattern.CharKind.
func (t *Trainer) CharTable() *charclass.Table {
	return t.charTable
}

// NumPosFields returns the configured POS-tuple column count.
func (t *Trainer) NumPosFields() int {
	return t.opts.NumPosFields
}

// FeaturePOSID returns the POS id implied by featureID's own string (its
// leading NumPosFields columns), used by internal/blob to populate each
// feature record's POS back-reference.
func (t *Trainer) FeaturePOSID(featureID int32) (int32, bool) {
	featureStr, ok := t.featureTable.GetByID(featureID)
	if !ok {
		return 0, false
	}
	posStr := posPrefix(featureStr, t.opts.NumPosFields)
	return t.posTable.GetByKey(posStr)
}
