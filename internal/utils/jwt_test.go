package utils

import (
	"testing"
	"time"

	"haulgo/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()

	token, err := GenerateAccessToken(userID, models.AccountTypeDriver, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ValidateAccessToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != userID.Hex() {
		t.Errorf("user_id = %q, want %q", claims.UserID, userID.Hex())
	}
	if claims.AccountType != models.AccountTypeDriver {
		t.Errorf("account_type = %s, want driver", claims.AccountType)
	}
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(primitive.NewObjectID(), models.AccountTypeIndividual, "right-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateAccessToken(token, "wrong-secret"); err == nil {
		t.Fatal("token signed with a different secret must not validate")
	}
}

func TestValidateAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(primitive.NewObjectID(), models.AccountTypeIndividual, "secret", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateAccessToken(token, "secret"); err == nil {
		t.Fatal("expired token must not validate")
	}
}
