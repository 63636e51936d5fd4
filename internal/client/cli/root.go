package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	status, _ := a.uploadStore.SyncStatus()
	s := string(status)
	if n := a.notifications.UnreadCount(); n > 0 {
		s = fmt.Sprintf("%s, %d unread", s, n)
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("Welcome to filedrop CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("fdrop %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: upload <path>..., (l)ist, delete <id>, sync, cancel, (n)otifications, readall, device [set <id>|clear], clearhistory, exit")

		case "upload":
			if len(args) == 0 {
				fmt.Println("Usage: upload <path-or-url> [more...]")
				continue
			}
			a.upload(ctx, args)

		case "l", "list":
			a.list(ctx)

		case "delete":
			if len(args) == 0 {
				fmt.Println("Usage: delete <file-id>")
				continue
			}
			a.deleteFile(ctx, args[0])

		case "sync":
			a.sync(ctx)

		case "cancel":
			a.cancelActive(ctx)

		case "n", "notifications":
			a.showNotifications(ctx)

		case "readall":
			a.notifications.MarkAllAsRead(ctx)
			fmt.Println("All notifications marked as read")

		case "device":
			a.deviceCmd(ctx, args)

		case "clearhistory":
			a.uploadStore.ClearHistory(ctx)
			fmt.Println("Upload history cleared")

		case "exit", "quit":
			fmt.Println("Bye!")
			return

		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

func (a *App) list(ctx context.Context) {
	files := a.uploadStore.Files()
	if len(files) == 0 {
		fmt.Println("No files yet. Try 'upload <path>' or 'sync'.")
		return
	}
	for _, f := range files {
		fmt.Printf("%s  %-30s %8d bytes  %s\n", f.ID, f.Name, f.Size, f.MimeType)
	}
}

func (a *App) sync(ctx context.Context) {
	if err := a.syncService.SyncWithRemote(ctx); err != nil {
		fmt.Println("Sync failed:", err)
		return
	}
	_, last := a.uploadStore.SyncStatus()
	fmt.Println("Synced at", last)
}

func (a *App) deleteFile(ctx context.Context, fileID string) {
	if !a.confirm(fmt.Sprintf("Delete %s on the server and locally?", fileID)) {
		return
	}
	if err := a.syncService.DeleteFile(ctx, fileID); err != nil {
		fmt.Println("Delete failed:", err)
		return
	}
	fmt.Println("Deleted", fileID)
}

func (a *App) showNotifications(ctx context.Context) {
	list := a.notifications.List()
	if len(list) == 0 {
		fmt.Println("No notifications")
		return
	}
	for _, n := range list {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		line := fmt.Sprintf("%s [%s] %s", marker, n.Type, n.Title)
		if n.Message != "" {
			line += ": " + n.Message
		}
		fmt.Println(line)
	}
}
