package domain

// Device is a catalog entry for an alarm keypad model.
type Device struct {
	Key            string
	Name           string
	Image          string
	Aliases        []string
	DirectSupport  bool
	SupportMessage string
	Problems       []Problem
}

// Problem is a known issue of a device together with its solution.
type Problem struct {
	Key      string
	Title    string
	Solution string
	VideoURL string
	Steps    []string
}

// PartitionStatus is one alarm partition as reported by the monitoring side.
type PartitionStatus struct {
	Name  string
	State string
}

// CameraStatus is one camera as reported by the monitoring side.
type CameraStatus struct {
	ID    string
	Name  string
	State string
}
