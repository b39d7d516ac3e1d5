package test

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const modulePath = "github.com/labnet/testorders/"

// Test runs the ginkgo specs of the calling package. The suite is named after the package
// path relative to the module, e.g. "orders/manager".
func Test(t *testing.T) {
	RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, suiteName())
}

func suiteName() string {
	pc, file, _, ok := runtime.Caller(2)
	if !ok {
		return "testorders"
	}

	name := runtime.FuncForPC(pc).Name()
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(strings.TrimPrefix(name, modulePath), "_test")
	if name == "" || strings.HasPrefix(name, "main") {
		return filepath.Base(filepath.Dir(file))
	}
	return name
}
