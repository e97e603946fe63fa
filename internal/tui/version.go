package tui

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// releaseURL is the GitHub endpoint for the latest moviedash release.
var releaseURL = "https://api.github.com/repos/naveenspark/moviedash/releases/latest"

// versionCheckMsg carries the result of a background release check.
type versionCheckMsg struct {
	latestVersion string
	hasUpdate     bool
}

// checkVersion looks for a newer release in the background.
// Returns nil for dev builds.
func checkVersion(current string) tea.Cmd {
	if current == "" || current == "dev" {
		return nil
	}
	url := releaseURL
	return func() tea.Msg {
		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(url)
		if err != nil {
			return versionCheckMsg{}
		}
		defer resp.Body.Close() //nolint:errcheck
		if resp.StatusCode != http.StatusOK {
			return versionCheckMsg{}
		}
		var release struct {
			TagName string `json:"tag_name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
			return versionCheckMsg{}
		}
		latest := strings.TrimPrefix(release.TagName, "v")
		if IsNewerVersion(latest, current) {
			return versionCheckMsg{latestVersion: "v" + latest, hasUpdate: true}
		}
		return versionCheckMsg{}
	}
}

// IsNewerVersion reports whether latest is a newer semver than current.
// Missing or non-numeric parts count as zero.
func IsNewerVersion(latest, current string) bool {
	lv, cv := parseVersion(latest), parseVersion(current)
	for i := range lv {
		if lv[i] != cv[i] {
			return lv[i] > cv[i]
		}
	}
	return false
}

func parseVersion(v string) [3]int {
	var out [3]int
	parts := strings.SplitN(strings.TrimPrefix(v, "v"), ".", 3)
	for i, p := range parts {
		n, _ := strconv.Atoi(p) //nolint:errcheck
		out[i] = n
	}
	return out
}
