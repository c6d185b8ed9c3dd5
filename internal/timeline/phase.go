package timeline

// Phase is the boot lifecycle. Exactly one is active at a time and Idle is
// terminal until a full remount.
type Phase int

const (
	Gate Phase = iota
	Booting
	Idle
)

func (p Phase) String() string {
	switch p {
	case Gate:
		return "gate"
	case Booting:
		return "booting"
	case Idle:
		return "idle"
	}
	return "unknown"
}
