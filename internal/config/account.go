package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AccountInfo is the account/business pair discovered from /users/me.
// It is cached on disk so repeat runs skip the discovery call.
type AccountInfo struct {
	AccountID  string `json:"account_id"`
	BusinessID int64  `json:"business_id"`
}

func accountPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "account.json"), nil
}

// LoadAccountInfo loads the cached account info. Missing or unreadable
// files return (nil, nil); discovery will simply run again.
func LoadAccountInfo() (*AccountInfo, error) {
	path, err := accountPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading account file: %w", err)
	}
	var info AccountInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, nil
	}
	if info.AccountID == "" || info.BusinessID == 0 {
		return nil, nil
	}
	return &info, nil
}

// SaveAccountInfo caches the account info on disk.
func SaveAccountInfo(info AccountInfo) error {
	path, err := accountPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling account info: %w", err)
	}
	return writeFileAtomic(path, data)
}

// DeleteAccountInfo removes the cached account info.
func DeleteAccountInfo() error {
	path, err := accountPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing account file: %w", err)
	}
	return nil
}
