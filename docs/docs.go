// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login-code": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Request a login code"
            }
        },
        "/auth/verify": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Verify a login code"
            }
        },
        "/auth/logout": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Log out",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/admin/credit-packages": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "List credit packages",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/admin/credit-packages/{listingID}": {
            "put": {
                "tags": [
                    "admin"
                ],
                "summary": "Create or update a credit package",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "admin"
                ],
                "summary": "Deactivate a credit package",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/admin/pending-credits": {
            "get": {
                "tags": [
                    "admin"
                ],
                "summary": "List pending credits",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events": {
            "post": {
                "tags": [
                    "events"
                ],
                "summary": "Create an event",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "get": {
                "tags": [
                    "events"
                ],
                "summary": "List my events",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events/{eventID}": {
            "get": {
                "tags": [
                    "events"
                ],
                "summary": "Get one of my events",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "patch": {
                "tags": [
                    "events"
                ],
                "summary": "Update an event",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "events"
                ],
                "summary": "Delete an event",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/public/events/{slug}": {
            "get": {
                "tags": [
                    "public"
                ],
                "summary": "Get a public event page"
            }
        },
        "/events/{eventID}/photos": {
            "post": {
                "tags": [
                    "gallery"
                ],
                "summary": "Upload a photo",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "get": {
                "tags": [
                    "gallery"
                ],
                "summary": "List photos",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events/{eventID}/photos/{photoID}": {
            "delete": {
                "tags": [
                    "gallery"
                ],
                "summary": "Delete a photo",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events/{eventID}/photos/{photoID}/like": {
            "put": {
                "tags": [
                    "gallery"
                ],
                "summary": "Like a photo",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "gallery"
                ],
                "summary": "Remove a like",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events/{eventID}/photos/{photoID}/comments": {
            "post": {
                "tags": [
                    "gallery"
                ],
                "summary": "Comment on a photo",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "get": {
                "tags": [
                    "gallery"
                ],
                "summary": "List comments on a photo",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events/{eventID}/guests": {
            "get": {
                "tags": [
                    "guests"
                ],
                "summary": "List guests",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events/{eventID}/guests/summary": {
            "get": {
                "tags": [
                    "guests"
                ],
                "summary": "Guest summary",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/events/{eventID}/guests/{guestID}": {
            "delete": {
                "tags": [
                    "guests"
                ],
                "summary": "Remove a guest",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/healthz": {
            "get": {
                "tags": [
                    "health"
                ],
                "summary": "Health check"
            }
        },
        "/events/{eventID}/invitations": {
            "post": {
                "tags": [
                    "invitations"
                ],
                "summary": "Send invitations",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "get": {
                "tags": [
                    "invitations"
                ],
                "summary": "List invitations",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/webhooks/purchases": {
            "post": {
                "tags": [
                    "webhooks"
                ],
                "summary": "Marketplace purchase webhook"
            }
        },
        "/events/{eventID}/rsvp": {
            "post": {
                "tags": [
                    "rsvp"
                ],
                "summary": "Submit or update an RSVP"
            }
        },
        "/events/{eventID}/rsvp/me": {
            "get": {
                "tags": [
                    "rsvp"
                ],
                "summary": "Get my RSVP"
            }
        },
        "/users/me": {
            "get": {
                "tags": [
                    "users"
                ],
                "summary": "Get current user",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "patch": {
                "tags": [
                    "users"
                ],
                "summary": "Update current user",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/users/me/credits/claim": {
            "post": {
                "tags": [
                    "users"
                ],
                "summary": "Claim pending credits",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token. Example: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Guestbook API",
	Description:      "Event pages with RSVP, guest photo galleries and credit purchases.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
