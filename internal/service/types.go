package service

// SourceFile is one file in a verified contract's source bundle.
type SourceFile struct {
	Filename string
	Content  string
	Length   int
	SHA256   string
	Inline   bool
}

// ContractRecord is the cached, normalized view of a verified
// contract returned by FetchContract.
type ContractRecord struct {
	Address        string
	ChainID        string
	Network        string
	ABI            string
	SourceFiles    []SourceFile
	Compiler       string
	Verified       bool
	Proxy          bool
	Implementation string
	ProxyType      string
	SourceOmitted  bool
	OmittedReason  string
	TotalLength    int
}

// CreationRecord is the normalized contract-creation provenance.
type CreationRecord struct {
	Address     string
	ChainID     string
	Network     string
	Creator     string
	TxHash      string
	BlockNumber string
	Timestamp   string
	Source      string
	Complete    bool
}

// ProxyRecord is the normalized EIP-1967 proxy detection result.
type ProxyRecord struct {
	Address        string
	ChainID        string
	Network        string
	IsProxy        bool
	Implementation string
	Admin          string
	ProxyType      string
	Evidence       []string
}
