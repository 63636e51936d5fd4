package cli

import (
	"context"
	"fmt"
)

// deviceCmd shows, replaces or clears the device identifier. Clearing makes
// the next request mint a fresh one.
func (a *App) deviceCmd(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Println("Device ID:", a.device.GetDeviceID(ctx))
		return
	}

	switch args[0] {
	case "set":
		if len(args) < 2 {
			fmt.Println("Usage: device set <uuid>")
			return
		}
		if err := a.device.SetDeviceID(ctx, args[1]); err != nil {
			fmt.Println("Not changed:", err)
			return
		}
		fmt.Println("Device ID set")

	case "clear":
		if err := a.device.ClearDeviceID(ctx); err != nil {
			fmt.Println("Clear failed:", err)
			return
		}
		fmt.Println("Device ID cleared, a new one will be generated")

	default:
		fmt.Println("Usage: device [set <uuid>|clear]")
	}
}
