package wallet

// State is the connection state of a Session.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	}
	return "invalid"
}

// Reason tells why a Session is Failed.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonWrongNetwork
	ReasonUnknown
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonWrongNetwork:
		return "wrong network"
	case ReasonUnknown:
		return "unknown"
	}
	return "invalid"
}

// Identity is how the connected account is shown: its ENS name when it has
// one, its address otherwise. At most one of the fields is set.
type Identity struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

func (i Identity) IsZero() bool {
	return i.Name == "" && i.Address == ""
}

func (i Identity) Display() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Address
}
