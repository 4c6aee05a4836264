package systems

import (
	"encoding/json"

	cfg "github.com/automoto/anticipation-mp/config"
	"github.com/quasilyte/gdata"
	log "github.com/sirupsen/logrus"
)

const settingsItem = "anticipation"

var gdataManager *gdata.Manager

// InitPersistence initializes the gdata manager for settings storage
func InitPersistence(appName string) error {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
		return err
	}
	gdataManager = m
	return nil
}

// LoadSettings loads the saved tuning. It returns nil without an error when
// nothing was saved yet or persistence is unavailable.
func LoadSettings() (*cfg.SavedSettings, error) {
	if gdataManager == nil {
		return nil, nil
	}

	data, err := gdataManager.LoadItem(settingsItem)
	if err != nil {
		log.Printf("Warning: Could not load settings: %v", err)
		return nil, nil
	}
	if len(data) == 0 {
		return nil, nil
	}

	// Fields missing from the file keep their live values.
	settings := cfg.CurrentSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		log.Printf("Warning: Could not parse saved settings: %v", err)
		return nil, err
	}
	return &settings, nil
}

// SaveSettings saves settings to disk
func SaveSettings(s cfg.SavedSettings) error {
	if gdataManager == nil {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("Warning: Could not serialize settings: %v", err)
		return err
	}

	if err := gdataManager.SaveItem(settingsItem, data); err != nil {
		log.Printf("Warning: Could not save settings: %v", err)
		return err
	}
	return nil
}

// SaveCurrentSettings persists the live tuning.
func SaveCurrentSettings() error {
	return SaveSettings(cfg.CurrentSettings())
}

// ApplySavedSettings loads and applies saved tuning, if any.
func ApplySavedSettings() {
	saved, err := LoadSettings()
	if err != nil || saved == nil {
		return
	}
	saved.Apply()
}
