package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"romportal/internal/certificate/service"
	"romportal/internal/certificate/store/storetest"
)

type MemoryStoreSuite struct {
	storetest.Suite
}

func TestMemoryStoreSuite(t *testing.T) {
	s := new(MemoryStoreSuite)
	s.NewRepo = func() service.Repository { return New() }
	suite.Run(t, s)
}
