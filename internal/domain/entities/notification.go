package entities

// InviteNotification is what the invite notifier needs to tell a participant
// they were invited.
type InviteNotification struct {
	ToEmail     string
	ToName      string
	TeamName    string
	InviterName string
	Role        string
	Message     string
}
