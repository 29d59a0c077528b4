package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseContractID(t *testing.T) {
	output := `Building contract...
Uploading wasm
Deploying
CAFJZQWSED6YAWZU3GWRTOCNPPCGBN32L7QV43XX5LZLFTK6JLN34DLN
Done`
	assert.Equal(t, "CAFJZQWSED6YAWZU3GWRTOCNPPCGBN32L7QV43XX5LZLFTK6JLN34DLN", parseContractID(output))
}

func TestParseContractIDPicksLast(t *testing.T) {
	output := `CALI2BYU2JE6WVRUFYTS6MSBNEHGJ35P4AVCZYF3B6QOE3QKOB2PLE6M
CBKGPWGKSKZF52CFHMTRR23TBWTPMRDIYZ4O2P5VS65BMHYH4DXMCJZC`
	assert.Equal(t, "CBKGPWGKSKZF52CFHMTRR23TBWTPMRDIYZ4O2P5VS65BMHYH4DXMCJZC", parseContractID(output))
}

func TestParseContractIDNone(t *testing.T) {
	assert.Equal(t, "", parseContractID("error: wasm build failed\n"))
}
