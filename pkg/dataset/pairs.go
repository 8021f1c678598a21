package dataset

// FeatureClassPair carries one feature column together with the class labels
// of the rows that survived missing-value removal, aligned by position.
type FeatureClassPair struct {
	Feature Column
	Class   []string
}
