package models

import (
	"strconv"
	"testing"
)

// Until an admin enables the switch, critical-log email broadcast stays off.
func TestEmailNotificationsDefaultOff(t *testing.T) {
	on, err := strconv.ParseBool(DefaultEmailNotificationsEnabled)
	if err != nil {
		t.Fatalf("default %q is not a bool: %v", DefaultEmailNotificationsEnabled, err)
	}
	if on {
		t.Errorf("email notifications must default to disabled")
	}
}
