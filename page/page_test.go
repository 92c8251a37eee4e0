package page_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ebbieaden/ensdapp/page"
	"github.com/ebbieaden/ensdapp/ui"
	"github.com/ebbieaden/ensdapp/wallet"
)

func TestRenderConnectedWithName(t *testing.T) {
	u := ui.NewRecordingUI()
	page.Render(u, page.View{
		State:    wallet.Connected,
		Identity: wallet.Identity{Name: "aden.eth"},
		Network:  "goerli",
	})

	require.Equal(t, []string{"Welcome to Aden Punks aden.eth!"}, u.CriticalMessages())
	require.True(t, u.HasMessage("Wallet connected"))
	require.False(t, u.HasMessage("Connect your wallet"))
	require.Contains(t, u.InfoMessages(), "It's an NFT collection for Aden Punks.")
	require.Contains(t, u.InfoMessages(), "Made with ❤ by Ebbie Aden")
	require.True(t, u.HasMessage("./learnweb3punks.png"))
}

func TestRenderConnectedWithAddress(t *testing.T) {
	u := ui.NewRecordingUI()
	page.Render(u, page.View{
		State:    wallet.Connected,
		Identity: wallet.Identity{Address: "0xABC0000000000000000000000000000000000001"},
	})
	require.Equal(t, []string{"Welcome to Aden Punks 0xABC0000000000000000000000000000000000001!"}, u.CriticalMessages())
}

func TestRenderNotConnected(t *testing.T) {
	for _, v := range []page.View{
		{State: wallet.Disconnected},
		{State: wallet.Failed, Reason: wallet.ReasonUnknown},
		{State: wallet.Failed, Reason: wallet.ReasonWrongNetwork},
	} {
		u := ui.NewRecordingUI()
		page.Render(u, v)
		require.Equal(t, []string{"Welcome to Aden Punks!"}, u.CriticalMessages())
		require.True(t, u.HasMessage("Connect your wallet"), v.State.String())
		require.False(t, u.HasMessage("Wallet connected"))
	}
}

func TestSnapshot(t *testing.T) {
	doc := page.Snapshot(page.View{
		State:   wallet.Failed,
		Reason:  wallet.ReasonWrongNetwork,
		Network: "goerli",
	})
	require.Equal(t, "Connect your wallet", doc.Status)
	require.Equal(t, "wrong network", doc.Reason)

	content, err := json.Marshal(page.Snapshot(page.View{
		State:    wallet.Connected,
		Identity: wallet.Identity{Name: "aden.eth"},
		Network:  "goerli",
	}))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"title": "ENS Dapp",
		"heading": "Welcome to Aden Punks aden.eth!",
		"description": "It's an NFT collection for Aden Punks.",
		"status": "Wallet connected",
		"state": "connected",
		"identity": {"name": "aden.eth"},
		"network": "goerli",
		"image": "./learnweb3punks.png",
		"footer": "Made with ❤ by Ebbie Aden"
	}`, string(content))
}
