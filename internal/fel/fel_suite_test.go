package fel_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFELSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "FEL Contract Suite")
}
