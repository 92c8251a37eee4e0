// Package page renders the welcome page of a wallet session.
package page

import (
	"fmt"

	"github.com/ebbieaden/ensdapp/ui"
	"github.com/ebbieaden/ensdapp/wallet"
)

const (
	Title           = "ENS Dapp"
	Description     = "It's an NFT collection for Aden Punks."
	ConnectAction   = "Connect your wallet"
	WalletConnected = "Wallet connected"
	Image           = "./learnweb3punks.png"
	Footer          = "Made with ❤ by Ebbie Aden"
)

// View is everything the page shows. It is a copy of the session state, so
// rendering never touches the session.
type View struct {
	State    wallet.State
	Reason   wallet.Reason
	Identity wallet.Identity
	Network  string
}

func ViewOf(s *wallet.Session, network string) View {
	return View{
		State:    s.State(),
		Reason:   s.Reason(),
		Identity: s.Identity(),
		Network:  network,
	}
}

func Heading(id wallet.Identity) string {
	if id.IsZero() {
		return "Welcome to Aden Punks!"
	}
	return fmt.Sprintf("Welcome to Aden Punks %s!", id.Display())
}

// Status is what stands where the connect button would be.
func Status(v View) string {
	switch v.State {
	case wallet.Connected:
		return WalletConnected
	case wallet.Connecting:
		return "Connecting..."
	}
	return ConnectAction
}

func Render(u ui.UI, v View) {
	u.Section(Title)
	u.Critical(Heading(v.Identity))
	u.Info(Description)
	u.Info("")

	status := Status(v)
	switch {
	case v.State == wallet.Connected:
		u.Success(status)
	case v.State == wallet.Failed && v.Reason == wallet.ReasonWrongNetwork:
		u.Warn("[ %s ] (wrong network)", status)
	case v.State == wallet.Connecting:
		u.Info(status)
	default:
		u.Info("[ %s ]", status)
	}

	u.Info("")
	u.KeyValue([][2]string{
		{"Network", v.Network},
		{"Image", Image},
	})
	u.Info("")
	u.Info(Footer)
}

// Document is the page as data, for --json.
type Document struct {
	Title       string          `json:"title"`
	Heading     string          `json:"heading"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	State       string          `json:"state"`
	Reason      string          `json:"reason,omitempty"`
	Identity    wallet.Identity `json:"identity"`
	Network     string          `json:"network"`
	Image       string          `json:"image"`
	Footer      string          `json:"footer"`
}

func Snapshot(v View) Document {
	doc := Document{
		Title:       Title,
		Heading:     Heading(v.Identity),
		Description: Description,
		Status:      Status(v),
		State:       v.State.String(),
		Identity:    v.Identity,
		Network:     v.Network,
		Image:       Image,
		Footer:      Footer,
	}
	if v.State == wallet.Failed {
		doc.Reason = v.Reason.String()
	}
	return doc
}
