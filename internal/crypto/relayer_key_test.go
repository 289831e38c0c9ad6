package crypto

import (
	"encoding/hex"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	keyHex := ethcrypto.FromECDSA(key)

	blob, err := EncryptKey("0x"+hex.EncodeToString(keyHex), "hunter2")
	require.NoError(t, err)

	decrypted, err := DecryptKey(blob, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(keyHex), decrypted)
}

func TestDecryptKey_WrongPassword(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	blob, err := EncryptKey(hex.EncodeToString(ethcrypto.FromECDSA(key)), "correct")
	require.NoError(t, err)

	_, err = DecryptKey(blob, "wrong")
	assert.Error(t, err)
}

func TestLoadRelayerKey_Raw(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	keyHex := hex.EncodeToString(ethcrypto.FromECDSA(key))

	loaded, err := LoadRelayerKey(KeySource{RawPrivateKey: "0x" + keyHex})
	require.NoError(t, err)
	assert.Equal(t,
		ethcrypto.PubkeyToAddress(key.PublicKey),
		ethcrypto.PubkeyToAddress(loaded.PublicKey),
	)
}

func TestLoadRelayerKey_NoSource(t *testing.T) {
	_, err := LoadRelayerKey(KeySource{})
	assert.Error(t, err)
}
