package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmscope/evmscope/internal/apperr"
	"github.com/evmscope/evmscope/internal/convert"
)

func TestWeiToEthWholeNumber(t *testing.T) {
	r, err := convert.Convert("1000000000000000000", convert.UnitWei, convert.UnitEth, 18)
	require.NoError(t, err)
	assert.Equal(t, "1", r.Value)
}

func TestHexToDec(t *testing.T) {
	r, err := convert.Convert("0x1", convert.UnitHex, convert.UnitDec, 18)
	require.NoError(t, err)
	assert.Equal(t, "1", r.Value)
}

func TestHumanOutputIncludesThousandsAndScientific(t *testing.T) {
	r, err := convert.Convert("1234500000000000000000", convert.UnitWei, convert.UnitHuman, 18)
	require.NoError(t, err)
	assert.Equal(t, "1234.5", r.Value)
	assert.Equal(t, "1,234.5", r.Thousands)
	assert.Contains(t, r.Scientific, "E+")
}

func TestNegativeDecRoundTripsThroughHex(t *testing.T) {
	r, err := convert.Convert("-255", convert.UnitDec, convert.UnitHex, 18)
	require.NoError(t, err)
	assert.Equal(t, "-0xff", r.Value)

	back, err := convert.Convert(r.Value, convert.UnitHex, convert.UnitDec, 18)
	require.NoError(t, err)
	assert.Equal(t, "-255", back.Value)
}

func TestTooManyFractionalDigitsRejected(t *testing.T) {
	_, err := convert.Convert("1.1234567890123456789", convert.UnitEth, convert.UnitWei, 18)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestGweiScale(t *testing.T) {
	r, err := convert.Convert("1", convert.UnitGwei, convert.UnitWei, 18)
	require.NoError(t, err)
	assert.Equal(t, "1000000000", r.Value)
}
