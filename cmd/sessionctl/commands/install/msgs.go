package install

// Message constants
const (
	MsgShort = "Install the gamescope session"
	MsgLong  = `Installs the gamescope session files and enables display-manager
autologin for the target account, as one transaction.

Every file created is journaled; if any step fails, the journal is
replayed in reverse and the host is left exactly as it was. A host
with no supported display manager gets the files installed and a
warning instead of autologin.`

	MsgExample = `  # Install for the invoking user
  sudo sessionctl install

  # Install for a specific account
  sudo sessionctl install --account deck

  # Files only, leave display-manager config alone
  sudo sessionctl install --skip-autologin`
)
