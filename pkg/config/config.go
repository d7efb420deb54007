package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"
)

// BankingOptions configures the remote banking API connection.
type BankingOptions struct {
	BaseURL    string `yaml:"baseUrl"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	SavedToken string `yaml:"savedToken"`
	Debug      bool   `yaml:"debug"`
}

// Config holds the application configuration
type Config struct {
	UserID         string         `yaml:"userId"`
	BankingOptions BankingOptions `yaml:"banking"`
}

var (
	// Global configuration instance
	globalConfig *Config
	// Mutex to ensure thread-safe access to the global configuration
	configMutex sync.RWMutex
	// Flag to track if the configuration has been loaded
	configLoaded bool
	// Path the global configuration was loaded from
	configPath = "config.yaml"
)

// LoadConfig loads the configuration from the specified YAML file
func LoadConfig(path string) (*Config, error) {
	// Read the configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse the YAML data
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if config.UserID == "" {
		config.UserID = "local"
	}

	return &config, nil
}

// InitGlobalConfig initializes the global configuration from the specified file
func InitGlobalConfig(path string) error {
	config, err := LoadConfig(path)
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	globalConfig = config
	configLoaded = true
	configPath = path
	return nil
}

// GetConfig returns the global configuration instance
// If the configuration hasn't been loaded yet, it attempts to load it from
// the default location (./config.yaml)
func GetConfig() (*Config, error) {
	configMutex.RLock()
	if configLoaded {
		defer configMutex.RUnlock()
		return globalConfig, nil
	}
	configMutex.RUnlock()

	if err := InitGlobalConfig(configPath); err != nil {
		// If the default config file doesn't exist, create it
		if os.IsNotExist(err) {
			dir := filepath.Dir(configPath)
			if dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, fmt.Errorf("error creating config directory: %w", err)
				}
			}

			defaultConfig := &Config{
				UserID: "local",
				BankingOptions: BankingOptions{
					BaseURL: "http://localhost:8000",
				},
			}

			data, err := yaml.Marshal(defaultConfig)
			if err != nil {
				return nil, fmt.Errorf("error creating default config: %w", err)
			}

			if err := os.WriteFile(configPath, data, 0644); err != nil {
				return nil, fmt.Errorf("error writing default config: %w", err)
			}

			configMutex.Lock()
			globalConfig = defaultConfig
			configLoaded = true
			configMutex.Unlock()

			return defaultConfig, nil
		}
		return nil, err
	}

	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig, nil
}

// GetUserID returns the configured local user id.
func GetUserID() (string, error) {
	config, err := GetConfig()
	if err != nil {
		return "", err
	}
	return config.UserID, nil
}

// GetBankingBaseURL returns the banking API base URL from the configuration
func GetBankingBaseURL() (string, error) {
	config, err := GetConfig()
	if err != nil {
		return "", err
	}

	if config.BankingOptions.BaseURL == "" {
		return "", fmt.Errorf("error: banking API base URL not set in configuration")
	}

	return config.BankingOptions.BaseURL, nil
}

// GetBankingCredentials returns the banking API credentials from the configuration
func GetBankingCredentials() (string, string, error) {
	config, err := GetConfig()
	if err != nil {
		return "", "", err
	}

	if config.BankingOptions.Email == "" || config.BankingOptions.Password == "" {
		return "", "", fmt.Errorf("error: banking API credentials not set in configuration")
	}

	return config.BankingOptions.Email, config.BankingOptions.Password, nil
}

// GetBankingDebug reports whether HTTP request dumping is enabled.
func GetBankingDebug() bool {
	config, err := GetConfig()
	if err != nil {
		return false
	}
	return config.BankingOptions.Debug
}

// GetBankingSavedToken returns the persisted banking session token.
func GetBankingSavedToken() (string, error) {
	config, err := GetConfig()
	if err != nil {
		return "", err
	}

	if config.BankingOptions.SavedToken == "" {
		return "", fmt.Errorf("error: no saved banking session")
	}

	return config.BankingOptions.SavedToken, nil
}

// SetBankingSavedToken persists the banking session token to the config file.
// An empty token clears the stored session.
func SetBankingSavedToken(token string) error {
	config, err := GetConfig()
	if err != nil {
		return err
	}

	config.BankingOptions.SavedToken = token

	configMutex.Lock()
	defer configMutex.Unlock()

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshalling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
