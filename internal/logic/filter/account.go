package filter

// AccountInclude 列出的账户必须全部出现在交易账户索引中
type AccountInclude struct {
	accounts []string
}

func NewAccountInclude(accounts []string) *AccountInclude {
	return &AccountInclude{accounts: accounts}
}

func (f *AccountInclude) Name() string          { return TypeAccountInclude }
func (f *AccountInclude) NewContext() noContext { return noContext{} }

func (f *AccountInclude) Filter(tx TxView, _ noContext) bool {
	index := tx.Accounts()
	for _, key := range f.accounts {
		if !index.Contains(key) {
			return false
		}
	}
	return true
}

// AccountExclude 列出的账户都不能出现在交易账户索引中
type AccountExclude struct {
	accounts []string
}

func NewAccountExclude(accounts []string) *AccountExclude {
	return &AccountExclude{accounts: accounts}
}

func (f *AccountExclude) Name() string          { return TypeAccountExclude }
func (f *AccountExclude) NewContext() noContext { return noContext{} }

func (f *AccountExclude) Filter(tx TxView, _ noContext) bool {
	index := tx.Accounts()
	for _, key := range f.accounts {
		if index.Contains(key) {
			return false
		}
	}
	return true
}
