package uninstall

// Message constants
const (
	MsgShort = "Remove the gamescope session"
	MsgLong  = `Removes the gamescope session files and disables display-manager
autologin for the target account.

Safe to run against a partially installed or already clean host:
missing files are skipped, shared directories that still hold other
content are left in place with a warning.`

	MsgExample = `  # Remove the session
  sudo sessionctl uninstall

  # Remove files but leave display-manager config alone
  sudo sessionctl uninstall --skip-autologin`
)
