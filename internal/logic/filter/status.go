package filter

// Status 按执行结果过滤；缺少 meta 时拒绝
type Status struct {
	success bool
}

func NewStatus(success bool) *Status {
	return &Status{success: success}
}

func (f *Status) Name() string          { return TypeStatus }
func (f *Status) NewContext() noContext { return noContext{} }

func (f *Status) Filter(tx TxView, _ noContext) bool {
	meta, ok := tx.Meta()
	if !ok {
		return false
	}
	return meta.Succeeded() == f.success
}

// DeleteAll 拒绝所有交易
type DeleteAll struct{}

func (DeleteAll) Name() string                      { return TypeDeleteAll }
func (DeleteAll) NewContext() noContext             { return noContext{} }
func (DeleteAll) Filter(_ TxView, _ noContext) bool { return false }
