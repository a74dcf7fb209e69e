package filter

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

// SignatureInclude 任一签名命中即接受；签名不可用时接受
type SignatureInclude struct {
	signatures map[string]struct{}
}

func NewSignatureInclude(signatures []string) *SignatureInclude {
	return &SignatureInclude{signatures: toSet(signatures)}
}

func (f *SignatureInclude) Name() string          { return TypeSignatureInclude }
func (f *SignatureInclude) NewContext() noContext { return noContext{} }

func (f *SignatureInclude) Filter(tx TxView, _ noContext) bool {
	sigs, ok := tx.Signatures()
	if !ok {
		return true
	}
	for _, s := range sigs {
		if _, hit := f.signatures[s]; hit {
			return true
		}
	}
	return false
}

// SignatureExclude 所有签名都不命中才接受；签名不可用时接受
type SignatureExclude struct {
	signatures map[string]struct{}
}

func NewSignatureExclude(signatures []string) *SignatureExclude {
	return &SignatureExclude{signatures: toSet(signatures)}
}

func (f *SignatureExclude) Name() string          { return TypeSignatureExclude }
func (f *SignatureExclude) NewContext() noContext { return noContext{} }

func (f *SignatureExclude) Filter(tx TxView, _ noContext) bool {
	sigs, ok := tx.Signatures()
	if !ok {
		return true
	}
	for _, s := range sigs {
		if _, hit := f.signatures[s]; hit {
			return false
		}
	}
	return true
}
