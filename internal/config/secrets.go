package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/bcup/bcup/internal/errors"
	"github.com/bcup/bcup/internal/options"
)

// Secrets is the content of secrets.toml. The file is only readable by its
// owner.
type Secrets struct {
	TelegramBotToken options.SecretString `toml:"telegram_bot_token"`
	AuthorizedUserID int64                `toml:"authorized_user_id"`
}

// LoadSecrets reads secrets.toml from dir. If the file does not exist, an
// empty Secrets and ErrNotConfigured are returned.
func LoadSecrets(dir string) (Secrets, error) {
	name := filepath.Join(dir, secretsFile)

	buf, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return Secrets{}, ErrNotConfigured
	}
	if err != nil {
		return Secrets{}, errors.Wrap(err, "ReadFile")
	}

	var s Secrets
	if err := decode(buf, &s); err != nil {
		return Secrets{}, errors.Fatalf("unable to parse %v: %v", name, err)
	}
	return s, nil
}

// Save writes s to secrets.toml in dir with mode 0600.
func (s Secrets) Save(dir string) error {
	buf, err := toml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "Marshal")
	}
	return writeFile(dir, secretsFile, buf, 0600)
}

// Check returns an error if s cannot be used to send archives.
func (s Secrets) Check() error {
	if s.TelegramBotToken.Empty() {
		return errors.Fatal("Telegram bot token not configured, run `bcup init` first")
	}
	if s.AuthorizedUserID == 0 {
		return errors.Fatal("authorized user ID not configured, run `bcup init` first")
	}
	return nil
}
