package fat16_test

import (
	"syscall"
	"testing"

	fat16 "github.com/kelveden/fat16fs"
	"github.com/stretchr/testify/assert"
)

func TestDriverErrorMessage(t *testing.T) {
	err := fat16.NewDriverErrorWithMessage(syscall.ENOSPC, "no free cluster")
	assert.Contains(t, err.Error(), "no free cluster")
	assert.Equal(t, -int(syscall.ENOSPC), err.Errno())
}

func TestDriverErrorDefaultMessage(t *testing.T) {
	err := fat16.NewDriverError(syscall.ENOENT)
	assert.Equal(t, syscall.ENOENT.Error(), err.Error())
}
