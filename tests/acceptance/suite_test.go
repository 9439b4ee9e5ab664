package acceptance

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

func TestAcceptance(t *testing.T) {
	if testing.Short() {
		t.Skip("acceptance tests require live PostgreSQL and Redis")
	}
	suite.Run(t, new(Suite))
}
