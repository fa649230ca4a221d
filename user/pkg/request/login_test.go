package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginMasksPassword(t *testing.T) {
	expected, _ := json.Marshal(map[string]string{"email": "email", "password": "***"})
	loginReq := Login{Email: "email", Password: "password"}

	actual, _ := json.Marshal(loginReq)

	assert.EqualValues(t, expected, actual)
	assert.EqualValues(t, "password", loginReq.Password)
}

func TestRegisterMasksPassword(t *testing.T) {
	expected, _ := json.Marshal(
		map[string]string{"username": "user", "email": "email", "password": "***"},
	)
	registerReq := Register{Username: "user", Email: "email", Password: "password"}

	actual, _ := json.Marshal(registerReq)

	assert.JSONEq(t, string(expected), string(actual))
	assert.EqualValues(t, "password", registerReq.Password)
}
