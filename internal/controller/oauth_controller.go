package controller

import (
	"context"
	"encoding/json"
	"sync"

	"chatstack_backend/internal/model"
	"chatstack_backend/pkg/database"
	"chatstack_backend/pkg/logger"
	"chatstack_backend/pkg/subscription"
	"chatstack_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var (
	oauthOnce   sync.Once
	oauthConfig *oauth2.Config
)

func googleOAuthConfig() *oauth2.Config {
	oauthOnce.Do(func() {
		oauthConfig = &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		}
	})
	return oauthConfig
}

type googleUserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

const oauthStateCookie = "oauth_state"

// GoogleLogin redirects the browser to the Google consent screen. The state
// nonce is stashed in a short-lived cookie and checked in the callback.
func GoogleLogin(c *fiber.Ctx) error {
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
		MaxAge:   300,
	})

	url := googleOAuthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	return c.Redirect(url, fiber.StatusTemporaryRedirect)
}

// GoogleCallback exchanges the authorization code, upserts the user, and
// hands out the same session token password login uses. First-time Google
// users get the free plan like any other signup.
func GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid state parameter",
		})
	}
	c.ClearCookie(oauthStateCookie)

	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing authorization code",
		})
	}

	ctx := context.Background()
	token, err := googleOAuthConfig().Exchange(ctx, code)
	if err != nil {
		logger.Get().Error("google code exchange failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Authentication failed",
		})
	}

	client := googleOAuthConfig().Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		logger.Get().Error("google userinfo fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Authentication failed",
		})
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Authentication failed",
		})
	}

	db := database.GetDB()

	var user model.User
	err = db.Where("email = ?", info.Email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		user = model.User{
			Name:           info.Name,
			Email:          info.Email,
			ProfilePicture: info.Picture,
		}
		if err := db.Create(&user).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not create user",
			})
		}
		if _, err := subscription.StartFree(db, user.ID); err != nil {
			logger.Get().Error("could not activate free plan",
				zap.Uint("user_id", user.ID), zap.Error(err))
		}
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Authentication failed",
		})
	}

	sessionToken, err := jwt.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    sessionToken,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "None",
		MaxAge:   24 * 60 * 60,
	})

	return c.Redirect(cfg.Google.FrontendURL+"/dashboard/pricing", fiber.StatusTemporaryRedirect)
}
