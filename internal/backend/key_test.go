package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tetrad-labs/metasnap/internal/model"
)

func TestRequestKeyFormat(t *testing.T) {
	req := model.NewRequest([]string{"Sales", "Billing"}, false, true, false)
	assert.Equal(t, "modules=billing,sales|system=0|inactive=1|activeattrs=0", RequestKey(req))
}

func TestRequestKeyEmptyModules(t *testing.T) {
	req := model.NewRequest(nil, true, false, true)
	assert.Equal(t, "modules=|system=1|inactive=0|activeattrs=1", RequestKey(req))
}

func TestRequestKeyIgnoresOrderAndCase(t *testing.T) {
	a := model.NewRequest([]string{"Sales", "Billing"}, false, false, false)
	b := model.NewRequest([]string{"BILLING", "sales", "Sales"}, false, false, false)
	assert.Equal(t, RequestKey(a), RequestKey(b))
}

func TestRequestKeyDistinguishesFlags(t *testing.T) {
	base := model.NewRequest([]string{"Sales"}, false, false, false)
	system := model.NewRequest([]string{"Sales"}, true, false, false)
	assert.NotEqual(t, RequestKey(base), RequestKey(system))
}
