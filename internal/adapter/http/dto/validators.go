package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Hex with optional 0x prefix, as emitted by wallet providers.
var txHashRe = regexp.MustCompile(`^(0x)?[a-fA-F0-9]{1,128}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("tx_hash", validateTxHash)
	}
}

func validateTxHash(fl validator.FieldLevel) bool {
	return txHashRe.MatchString(fl.Field().String())
}
